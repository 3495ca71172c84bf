package sqlite

import "database/sql"

// Users carry no foreign key from messages: the directory may drop a user
// while their messages stay readable.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'student',
	password_hash TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id        INTEGER NOT NULL,
	receiver_id      INTEGER NOT NULL,
	conversation_key TEXT NOT NULL,
	body             TEXT NOT NULL,
	kind             TEXT NOT NULL DEFAULT 'text',
	created_at       INTEGER NOT NULL,
	is_read          INTEGER NOT NULL DEFAULT 0,
	CHECK (sender_id <> receiver_id)
);

CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id, created_at, id);
CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id, created_at, id);
CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(receiver_id, is_read);
CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_key, created_at, id);
`

// ApplySchema creates tables and indexes on db. Intended for NewWithSetup.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
