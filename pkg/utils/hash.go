package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString is used for chunk dedupe keys and reply-cache keys.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}
