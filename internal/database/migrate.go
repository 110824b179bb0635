package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"self-analysis/internal/config"
	"self-analysis/internal/logger"

	_ "github.com/godror/godror" // Oracle driver for DDL
	"go.uber.org/zap"
)

// NewMigrateOracleDB opens a godror connection for running schema
// scripts. The ODPI-C based driver handles long DDL statements more
// reliably than the pure-Go driver the application pool uses.
func NewMigrateOracleDB(dbCfg config.DBConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(`user="%s" password="%s" connectString="%s:%d/%s"`,
		dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.DBName)

	db, err := sql.Open("godror", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}

	return db, nil
}

// RunMigrations executes every *.up.sql file in migrationsDir in
// lexical order.
func RunMigrations(db *sql.DB, migrationsDir string) error {
	return runScripts(db, migrationsDir, ".up.sql", false)
}

// RollbackMigrations executes every *.down.sql file in reverse lexical
// order, undoing RunMigrations.
func RollbackMigrations(db *sql.DB, migrationsDir string) error {
	return runScripts(db, migrationsDir, ".down.sql", true)
}

func runScripts(db *sql.DB, dir, suffix string, reverse bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("could not read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), suffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	if reverse {
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
	}

	appLogger := logger.Get()
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		// Oracle rejects multi-statement Execs, so scripts are split
		// into individual statements first.
		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", name, err)
			}
		}

		appLogger.Info("Executed migration", zap.String("file", name))
	}

	appLogger.Info("Migrations completed successfully")
	return nil
}

func splitStatements(script string) []string {
	var stmts []string
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}
