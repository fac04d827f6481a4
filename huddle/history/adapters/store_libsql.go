package adapters

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/xeipuuv/gojsonschema"

	"github.com/huddlehq/huddle/huddle/history"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// settingsSchema validates settings documents read back from storage before
// they are deserialized. A row that fails validation is reported with
// context rather than silently adopted.
const settingsSchema = `{
	"type": "object",
	"required": ["conversation_id", "default_access", "participant_access", "respect_private_segments", "created_by"],
	"properties": {
		"conversation_id": {"type": "string", "minLength": 1},
		"default_access": {
			"type": "object",
			"required": ["kind"],
			"properties": {
				"kind": {"enum": ["none", "limited", "full", "custom"]}
			}
		},
		"participant_access": {"type": "object"},
		"respect_private_segments": {"type": "boolean"},
		"allow_history_download": {"type": "boolean"},
		"created_by": {"type": "string"}
	}
}`

// settingsDoc is the JSON document stored per conversation row.
type settingsDoc struct {
	ConversationID    string                     `json:"conversation_id"`
	DefaultAccess     json.RawMessage            `json:"default_access"`
	ParticipantAccess map[string]json.RawMessage `json:"participant_access"`
	RespectPrivate    bool                       `json:"respect_private_segments"`
	AllowDownload     bool                       `json:"allow_history_download"`
	CreatedBy         string                     `json:"created_by"`
	CreatedAt         time.Time                  `json:"created_at"`
	LastModified      time.Time                  `json:"last_modified"`
}

// LibSQLSettingsStore implements history.SettingsStore on an embedded
// libsql database. Settings are stored as one JSON document per
// conversation and validated against settingsSchema on load.
type LibSQLSettingsStore struct {
	db     *sql.DB
	schema gojsonschema.JSONLoader
}

// NewLibSQLSettingsStore creates a settings store and runs pending schema
// migrations.
func NewLibSQLSettingsStore(db *sql.DB) (*LibSQLSettingsStore, error) {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return nil, fmt.Errorf("failed to run goose migrations: %w", err)
	}

	return &LibSQLSettingsStore{
		db:     db,
		schema: gojsonschema.NewStringLoader(settingsSchema),
	}, nil
}

// Save writes the settings document for a conversation, replacing any
// previous version.
func (s *LibSQLSettingsStore) Save(ctx context.Context, settings *history.Settings) error {
	doc, err := encodeSettings(settings)
	if err != nil {
		return err
	}

	query := `
		INSERT OR REPLACE INTO conversation_history_settings (conversation_id, doc, updated_at)
		VALUES (?, ?, ?)
	`

	if _, err := s.db.ExecContext(ctx, query, settings.ConversationID, string(doc), time.Now()); err != nil {
		return fmt.Errorf("failed to save settings for %s: %w", settings.ConversationID, err)
	}

	return nil
}

// Load reads every persisted settings document, validating each against the
// settings schema before decoding.
func (s *LibSQLSettingsStore) Load(ctx context.Context) (map[string]*history.Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT conversation_id, doc FROM conversation_history_settings")
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*history.Settings)
	for rows.Next() {
		var conversationID, doc string
		if err := rows.Scan(&conversationID, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan settings row: %w", err)
		}

		if err := s.validateDoc([]byte(doc)); err != nil {
			return nil, fmt.Errorf("invalid settings document for %s: %w", conversationID, err)
		}

		settings, err := decodeSettings([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("failed to decode settings for %s: %w", conversationID, err)
		}
		result[conversationID] = settings
	}

	return result, rows.Err()
}

func (s *LibSQLSettingsStore) validateDoc(doc []byte) error {
	result, err := gojsonschema.Validate(s.schema, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("schema validation errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func encodeSettings(settings *history.Settings) ([]byte, error) {
	defaultAccess, err := history.MarshalAccessLevel(settings.DefaultAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to encode default access: %w", err)
	}

	overrides := make(map[string]json.RawMessage, len(settings.ParticipantAccess))
	for id, level := range settings.ParticipantAccess {
		raw, err := history.MarshalAccessLevel(level)
		if err != nil {
			return nil, fmt.Errorf("failed to encode override for %s: %w", id, err)
		}
		overrides[id] = raw
	}

	return json.Marshal(settingsDoc{
		ConversationID:    settings.ConversationID,
		DefaultAccess:     defaultAccess,
		ParticipantAccess: overrides,
		RespectPrivate:    settings.RespectPrivate,
		AllowDownload:     settings.AllowDownload,
		CreatedBy:         settings.CreatedBy,
		CreatedAt:         settings.CreatedAt,
		LastModified:      settings.LastModified,
	})
}

func decodeSettings(data []byte) (*history.Settings, error) {
	var doc settingsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode settings document: %w", err)
	}

	defaultAccess, err := history.UnmarshalAccessLevel(doc.DefaultAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to decode default access: %w", err)
	}

	overrides := make(map[string]history.AccessLevel, len(doc.ParticipantAccess))
	for id, raw := range doc.ParticipantAccess {
		level, err := history.UnmarshalAccessLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode override for %s: %w", id, err)
		}
		overrides[id] = level
	}

	return &history.Settings{
		ConversationID:    doc.ConversationID,
		DefaultAccess:     defaultAccess,
		ParticipantAccess: overrides,
		RespectPrivate:    doc.RespectPrivate,
		AllowDownload:     doc.AllowDownload,
		CreatedBy:         doc.CreatedBy,
		CreatedAt:         doc.CreatedAt,
		LastModified:      doc.LastModified,
	}, nil
}

// Ensure LibSQLSettingsStore implements the SettingsStore interface.
var _ history.SettingsStore = (*LibSQLSettingsStore)(nil)
