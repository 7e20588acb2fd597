package repos

import (
	"context"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// BEGIN IMMEDIATE takes the write lock up front, so concurrent writers wait
// on busy_timeout instead of failing a shared-to-write lock upgrade.
const txLock = "_txlock=immediate"

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" is a separate database.
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func withPragmas(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "_pragma=") {
		params = append(params, pragmas)
	}
	if !strings.Contains(dsn, "_txlock=") {
		params = append(params, txLock)
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func isMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id INTEGER NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Households and access
CREATE TABLE IF NOT EXISTS homes(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS permissions(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  home_id INTEGER NOT NULL REFERENCES homes(id) ON DELETE CASCADE,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  type TEXT NOT NULL CHECK (type IN ('owner','read','read-write')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(home_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_permissions_user ON permissions(user_id);

CREATE TABLE IF NOT EXISTS invite_links(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE,
  home_id INTEGER NOT NULL REFERENCES homes(id) ON DELETE CASCADE,
  type TEXT NOT NULL CHECK (type IN ('read','read-write')),
  created_by INTEGER NULL REFERENCES users(id) ON DELETE SET NULL,
  expires_at INTEGER NOT NULL,       -- unix seconds
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Catalog. Referential blocks (product in use etc.) live in the services.
CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  home_id INTEGER NOT NULL REFERENCES homes(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_categories_home ON categories(home_id);

CREATE TABLE IF NOT EXISTS subcategories(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_subcategories_category ON subcategories(category_id);

CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  home_id INTEGER NOT NULL REFERENCES homes(id) ON DELETE CASCADE,
  subcategory_id INTEGER NOT NULL REFERENCES subcategories(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  picture TEXT NOT NULL DEFAULT '',
  mass REAL,
  liquid REAL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_home        ON products(home_id);
CREATE INDEX IF NOT EXISTS idx_products_subcategory ON products(subcategory_id);

-- Stock: one row per unit
CREATE TABLE IF NOT EXISTS batches(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  home_id INTEGER NOT NULL REFERENCES homes(id) ON DELETE CASCADE,
  expiration_date TEXT NULL,         -- YYYY-MM-DD
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_batches_fefo ON batches(product_id, home_id, expiration_date IS NULL, expiration_date, id);
CREATE INDEX IF NOT EXISTS idx_batches_home ON batches(home_id);

-- Carts
CREATE TABLE IF NOT EXISTS carts(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  home_id INTEGER NOT NULL UNIQUE REFERENCES homes(id) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_lines(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  cart_id INTEGER NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  checked INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT,
  UNIQUE(cart_id, product_id)
);
`
	_, err := db.Exec(schema)
	return err
}

// SeedDemo creates a demo user owning one household with a small catalog.
// Safe to run on every startup (idempotent).
func SeedDemo(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users WHERE LOWER(email) = 'demo@homestock.test'`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo user/home/catalog")

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return inTx(context.Background(), db, func(tx *sqlx.Tx) error {
		res, err := tx.Exec(`INSERT INTO users(email,name,password_hash) VALUES(?,?,?)`,
			"demo@homestock.test", "Demo", string(hash))
		if err != nil {
			return err
		}
		userID, _ := res.LastInsertId()

		res, err = tx.Exec(`INSERT INTO homes(name) VALUES('Demo Home')`)
		if err != nil {
			return err
		}
		homeID, _ := res.LastInsertId()
		if _, err := tx.Exec(`INSERT INTO permissions(home_id,user_id,type) VALUES(?,?,'owner')`, homeID, userID); err != nil {
			return err
		}

		res, err = tx.Exec(`INSERT INTO categories(home_id,name) VALUES(?, 'Dairy')`, homeID)
		if err != nil {
			return err
		}
		catID, _ := res.LastInsertId()
		res, err = tx.Exec(`INSERT INTO subcategories(category_id,name) VALUES(?, 'Milk')`, catID)
		if err != nil {
			return err
		}
		subID, _ := res.LastInsertId()
		_, err = tx.Exec(`INSERT INTO products(home_id,subcategory_id,name,picture,liquid) VALUES(?,?,?,?,?)`,
			homeID, subID, "Whole milk", "products/whole-milk.jpg", 1000.0)
		return err
	})
}
