package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"HealthMate/internal/cli/auth"
	"HealthMate/internal/cli/crypto"
	"HealthMate/internal/cli/model"
	"HealthMate/internal/cli/repo"
)

const credentialKey = "token"

// localEntry — строка key/value, аналог браузерного localStorage.
type localEntry struct {
	Name      string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (localEntry) TableName() string { return "local_entries" }

// LocalStore — локальная БД клиента: зеркало токена и кэш созданных отчётов.
// Токен хранится зашифрованным ключом из файла "<path>.key".
type LocalStore struct {
	db  *gorm.DB
	key []byte
}

var (
	_ repo.CredentialStore  = (*LocalStore)(nil)
	_ repo.ReportRepository = (*LocalStore)(nil)
)

// Open открывает (и создаёт при необходимости) файл БД и выполняет миграции.
// dsn ":memory:" удобен в тестах.
func Open(path string) (*LocalStore, error) {
	if path == "" {
		return nil, errors.New("empty client db path")
	}
	var (
		key []byte
		err error
	)
	if path == ":memory:" {
		key, err = crypto.NewKey()
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
		key, err = crypto.LoadOrCreateKey(path + ".key")
	}
	if err != nil {
		return nil, fmt.Errorf("client db key: %w", err)
	}
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: path}
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// одно соединение: у ":memory:" своя БД на каждое соединение
	sqlDB.SetMaxOpenConns(1)
	s := &LocalStore{db: db, key: key}
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Migrate гарантирует наличие необходимых таблиц/индексов.
func (s *LocalStore) Migrate() error {
	return s.db.AutoMigrate(&localEntry{}, &model.LocalReport{})
}

// Close закрывает соединение с БД.
func (s *LocalStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save кладёт токен в localStorage. Срок действия не хранится.
func (s *LocalStore) Save(cred auth.Credential) error {
	if cred.Token == "" {
		return errors.New("empty token")
	}
	sealed, err := crypto.Seal([]byte(cred.Token), s.key)
	if err != nil {
		return err
	}
	e := localEntry{Name: credentialKey, Value: sealed, UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

// Load читает токен из localStorage. Просроченный JWT удаляется.
func (s *LocalStore) Load() (auth.Credential, error) {
	var e localEntry
	err := s.db.Where("name = ?", credentialKey).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.Credential{}, repo.ErrNoCredential
	}
	if err != nil {
		return auth.Credential{}, err
	}
	plain, err := crypto.Open(e.Value, s.key)
	if err != nil {
		// значение записано другим ключом или повреждено
		_ = s.Clear()
		return auth.Credential{}, repo.ErrNoCredential
	}
	cred := auth.Credential{Token: string(plain)}
	if !cred.Valid(time.Now()) {
		_ = s.Clear()
		return auth.Credential{}, repo.ErrNoCredential
	}
	return cred, nil
}

// Clear удаляет токен из localStorage.
func (s *LocalStore) Clear() error {
	return s.db.Where("name = ?", credentialKey).Delete(&localEntry{}).Error
}

// SaveReport сохраняет отчёт в кэш; повторное сохранение обновляет запись.
func (s *LocalStore) SaveReport(ctx context.Context, r model.Report) error {
	if r.ID == "" {
		return errors.New("empty report id")
	}
	row := model.NewLocalReport(r)
	row.ID = uuid.NewString()
	row.CreatedAt = time.Now()
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "report_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "file_url", "file_public_id", "file_type", "date_taken", "tags"}),
	}).Create(&row).Error
}

// ListReports возвращает записи кэша, новые первыми.
func (s *LocalStore) ListReports(ctx context.Context, limit int) ([]model.LocalReport, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var res []model.LocalReport
	if err := q.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteReport удаляет запись кэша; отсутствие записи ошибкой не считается.
func (s *LocalStore) DeleteReport(ctx context.Context, reportID string) error {
	return s.db.WithContext(ctx).Where("report_id = ?", reportID).Delete(&model.LocalReport{}).Error
}
