package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// Migrate runs AutoMigrate for all models.
func Migrate() error {
	return DB.AutoMigrate(
		&models.UserProfile{},
		&models.IssueReport{},
		&models.Notification{},
		&models.SystemLog{},
	)
}

// notifyFunc broadcasts row changes as NOTIFY payloads on a per-table channel
// ("<table>_changes"). The payload carries only op and id; subscribers fetch
// the full row themselves, which keeps payloads under the 8000-byte limit.
const notifyFunc = `
CREATE OR REPLACE FUNCTION notify_row_change() RETURNS trigger AS $$
DECLARE
	rec_id text;
BEGIN
	IF TG_OP = 'DELETE' THEN
		rec_id := OLD.id::text;
	ELSE
		rec_id := NEW.id::text;
	END IF;
	PERFORM pg_notify(TG_TABLE_NAME || '_changes',
		json_build_object('op', TG_OP, 'id', rec_id)::text);
	IF TG_OP = 'DELETE' THEN
		RETURN OLD;
	END IF;
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;
`

// EnsureChangeFeed installs the NOTIFY function and row-change triggers on the
// live-subscribed tables. Idempotent; safe to run on every startup.
func EnsureChangeFeed() error {
	if err := DB.Exec(notifyFunc).Error; err != nil {
		return fmt.Errorf("failed to create notify function: %w", err)
	}

	for _, table := range []string{"issue_reports", "user_profiles"} {
		drop := fmt.Sprintf("DROP TRIGGER IF EXISTS %s_notify ON %s", table, table)
		create := fmt.Sprintf(
			"CREATE TRIGGER %s_notify AFTER INSERT OR UPDATE OR DELETE ON %s FOR EACH ROW EXECUTE FUNCTION notify_row_change()",
			table, table)
		if err := DB.Exec(drop).Error; err != nil {
			return fmt.Errorf("failed to drop trigger on %s: %w", table, err)
		}
		if err := DB.Exec(create).Error; err != nil {
			return fmt.Errorf("failed to create trigger on %s: %w", table, err)
		}
	}

	slog.Info("change feed triggers installed")
	return nil
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
