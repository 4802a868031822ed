package db

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/sharmakshay27/KisaanPower/backend/pkg/common"

	_ "github.com/lib/pq" // Postgres driver
)

const connectRetries = 5

// Connect establishes a connection to the database, waiting for it to come
// up during container orchestration.
func Connect(cfg common.DBConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %v", err)
	}

	for i := 0; i < connectRetries; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		log.Printf("Waiting for DB... (%d/%d): %v", i+1, connectRetries, err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to ping db: %v", err)
	}

	log.Println("Successfully connected to database")
	return db, nil
}
