package database

const schema = `
CREATE TABLE IF NOT EXISTS user_messages (
    id TEXT PRIMARY KEY,
    user_id INTEGER NOT NULL,
    content TEXT NOT NULL,
    message_type TEXT NOT NULL DEFAULT 'text',
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS user_credentials (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    label TEXT NOT NULL COLLATE NOCASE,
    username TEXT NOT NULL,
    password TEXT NOT NULL,
    source_id TEXT REFERENCES user_messages(id) ON DELETE SET NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    UNIQUE(user_id, label)
);

CREATE TABLE IF NOT EXISTS user_passwords (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    label TEXT NOT NULL COLLATE NOCASE,
    password TEXT NOT NULL,
    source_id TEXT REFERENCES user_messages(id) ON DELETE SET NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    UNIQUE(user_id, label)
);

CREATE TABLE IF NOT EXISTS user_emails (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    email TEXT NOT NULL COLLATE NOCASE,
    label TEXT,
    source_id TEXT REFERENCES user_messages(id) ON DELETE SET NULL,
    created_at DATETIME NOT NULL,
    UNIQUE(user_id, email)
);

CREATE TABLE IF NOT EXISTS user_links (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    url TEXT NOT NULL,
    link_type TEXT,
    source_id TEXT REFERENCES user_messages(id) ON DELETE SET NULL,
    created_at DATETIME NOT NULL,
    UNIQUE(user_id, url)
);

CREATE TABLE IF NOT EXISTS user_notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    note TEXT NOT NULL,
    source_id TEXT REFERENCES user_messages(id) ON DELETE SET NULL,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_user ON user_messages(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_notes_user ON user_notes(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_notes_dedup ON user_notes(user_id, note);
CREATE INDEX IF NOT EXISTS idx_links_user ON user_links(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_emails_user ON user_emails(user_id, created_at);
`
