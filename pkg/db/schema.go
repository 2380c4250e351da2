package db

// tables.
const (
	tableUsersName    Table = "users"
	tableMainName     Table = "bookmarks"
	tableTagsName     Table = "tags"
	tableRelationName Table = "bookmark_tags"
	tableKeysName     Table = "api_keys"
)

// DefaultTagColor is the color given to new tags.
const DefaultTagColor = "#3B82F6"

// Schema holds the statements that create a table.
type Schema struct {
	Name    Table
	SQL     string
	Trigger []string
	Index   []string
}

// schemaUsers is the schema for the users table.
var schemaUsers = Schema{
	Name:    tableUsersName,
	SQL:     tableUsersSchema,
	Trigger: []string{tableUsersTriggerUpdateAt},
}

// schemaMain is the schema for the main table.
var schemaMain = Schema{
	Name:    tableMainName,
	SQL:     tableMainSchema,
	Index:   []string{tableMainIndexCreated},
	Trigger: []string{tableMainTriggerUpdateAt},
}

// schemaTags is the schema for the tags table.
var schemaTags = Schema{
	Name: tableTagsName,
	SQL:  tableTagsSchema,
}

// schemaRelation is the schema for the relation table.
var schemaRelation = Schema{
	Name:  tableRelationName,
	SQL:   tableRelationSchema,
	Index: []string{tableRelationIndex},
}

// schemaKeys is the schema for the API keys table.
var schemaKeys = Schema{
	Name:  tableKeysName,
	SQL:   tableKeysSchema,
	Index: []string{tableKeysIndex},
}

// users table.
const (
	tableUsersSchema = `
    CREATE TABLE IF NOT EXISTS users (
        id              INTEGER PRIMARY KEY AUTOINCREMENT,
        username        TEXT    NOT NULL UNIQUE,
        password_hash   TEXT    NOT NULL,
        created_at      TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
        updated_at      TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
    );`

	tableUsersTriggerUpdateAt = `
    CREATE TRIGGER IF NOT EXISTS update_user_updated_at
    AFTER UPDATE OF username, password_hash ON users
    FOR EACH ROW
    BEGIN
        UPDATE users SET updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now') WHERE id = OLD.id;
    END;`
)

// main table.
const (
	tableMainSchema = `
    CREATE TABLE IF NOT EXISTS bookmarks (
        id          INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id     INTEGER NOT NULL,
        url         TEXT    NOT NULL,
        title       TEXT    NOT NULL DEFAULT '',
        description TEXT    NOT NULL DEFAULT '',
        created_at  TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
        updated_at  TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
        UNIQUE (user_id, url)
    );`

	tableMainIndexCreated = `
    CREATE INDEX IF NOT EXISTS idx_bookmarks_created
    ON bookmarks(user_id, created_at DESC);`

	tableMainTriggerUpdateAt = `
    CREATE TRIGGER IF NOT EXISTS update_bookmark_updated_at
    AFTER UPDATE OF url, title, description ON bookmarks
    FOR EACH ROW
    BEGIN
        UPDATE bookmarks SET updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now') WHERE id = OLD.id;
    END;`
)

// tags table.
const (
	tableTagsSchema = `
    CREATE TABLE IF NOT EXISTS tags (
        id          INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id     INTEGER NOT NULL,
        name        TEXT    NOT NULL COLLATE NOCASE,
        color       TEXT    NOT NULL DEFAULT '#3B82F6',
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
        UNIQUE (user_id, name)
    );`
)

// relation table.
const (
	tableRelationSchema = `
    CREATE TABLE IF NOT EXISTS bookmark_tags (
        bookmark_id INTEGER NOT NULL,
        tag_id      INTEGER NOT NULL,
        FOREIGN KEY (bookmark_id) REFERENCES bookmarks(id) ON DELETE CASCADE,
        FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE,
        PRIMARY KEY (bookmark_id, tag_id)
    );`

	tableRelationIndex = `
    CREATE INDEX IF NOT EXISTS idx_bookmark_tags_tag
    ON bookmark_tags(tag_id);`
)

// api keys table.
const (
	tableKeysSchema = `
    CREATE TABLE IF NOT EXISTS api_keys (
        id          INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id     INTEGER NOT NULL,
        name        TEXT    NOT NULL,
        key_hash    TEXT    NOT NULL UNIQUE,
        key_preview TEXT    NOT NULL,
        active      BOOLEAN NOT NULL DEFAULT TRUE,
        created_at  TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
        last_used   TEXT,
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
    );`

	tableKeysIndex = `
    CREATE INDEX IF NOT EXISTS idx_api_keys_user
    ON api_keys(user_id);`
)
