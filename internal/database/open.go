package database

import "fmt"

// Open connects to the database named by driver ("sqlite" or "postgres")
// and returns the matching CardStore.
func Open(driver, dsn string) (CardStore, error) {
	switch driver {
	case "sqlite", "sqlite3":
		db, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return NewSQLiteCardStore(db), nil
	case "postgres", "pgx":
		db, err := NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		return NewPgCardStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
