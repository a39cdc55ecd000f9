package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/JoeyRudd/ai-fitness-coach/internal/storage/models"
	"github.com/JoeyRudd/ai-fitness-coach/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		intent TEXT NOT NULL,
		message TEXT NOT NULL,
		response TEXT NOT NULL,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at);
	CREATE INDEX IF NOT EXISTS idx_exchanges_intent ON exchanges(intent);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertExchange(ex *models.Exchange) error {
	query := `INSERT INTO exchanges (id, intent, message, response, latency_ms, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := c.db.Exec(
		query,
		ex.ID,
		ex.Intent,
		ex.Message,
		ex.Response,
		ex.LatencyMS,
		ex.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}

	logger.Debug("Exchange recorded",
		zap.String("exchange_id", ex.ID),
		zap.String("intent", ex.Intent),
	)

	return nil
}

func (c *Client) RecentExchanges(limit int) ([]models.Exchange, error) {
	query := `
		SELECT id, intent, message, response, latency_ms, created_at
		FROM exchanges
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []models.Exchange
	for rows.Next() {
		var ex models.Exchange
		var createdAt int64

		err := rows.Scan(&ex.ID, &ex.Intent, &ex.Message, &ex.Response, &ex.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		ex.CreatedAt = time.Unix(createdAt, 0)
		exchanges = append(exchanges, ex)
	}

	return exchanges, nil
}
