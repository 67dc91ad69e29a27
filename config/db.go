package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"gym-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "gym_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

// MigrateModels runs AutoMigrate in parent->child order. Shared with the test
// helpers so fixtures and production migrate the same set.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
		&models.SiteContent{},
		&models.LessonType{},
		&models.Apparatus{},
		&models.FocusArea{},
		&models.SideQuest{},
		&models.Skill{},
		&models.Parent{},
		&models.Athlete{},
		&models.Waiver{},
		&models.AthleteSkill{},
		&models.Booking{},
		&models.BookingAthlete{},
		&models.BookingFocusArea{},
		&models.BookingApparatus{},
		&models.BookingSideQuest{},
		&models.PaymentEvent{},
	)
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	if err := MigrateModels(DB); err != nil {
		return err
	}

	SeedDatabase()
	return nil
}

// SeedDatabase inserts the lookup vocabulary and a default admin on first
// boot. Every block is guarded by a count so reruns are no-ops.
func SeedDatabase() {
	var adminCount int64
	DB.Model(&models.Admin{}).Count(&adminCount)
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(envOrDefault("ADMIN_INITIAL_PASSWORD", "coach123")), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("warning: failed to hash default admin password: %v", err)
		} else {
			admin := models.Admin{
				FullName: "Coach Admin",
				Username: envOrDefault("ADMIN_INITIAL_USERNAME", "admin@gym.local"),
				Password: string(hash),
			}
			if err := DB.Create(&admin).Error; err != nil {
				log.Printf("warning: failed to create default admin: %v", err)
			} else {
				log.Println("Default admin seeded")
			}
		}
	}

	var ltCount int64
	DB.Model(&models.LessonType{}).Count(&ltCount)
	if ltCount == 0 {
		lessonTypes := []models.LessonType{
			{Slug: "quick-journey", Name: "Quick Journey", DurationMinutes: 30, MaxAthletes: 1, FullPriceCents: 4000, ReservationFeeCents: 1000},
			{Slug: "deep-dive", Name: "Deep Dive", DurationMinutes: 60, MaxAthletes: 1, FullPriceCents: 7500, ReservationFeeCents: 2000},
			{Slug: "dual-quest", Name: "Dual Quest", DurationMinutes: 90, MaxAthletes: 2, FullPriceCents: 11000, ReservationFeeCents: 3000},
		}
		if err := DB.Create(&lessonTypes).Error; err != nil {
			log.Printf("warning: failed to seed lesson types: %v", err)
		} else {
			log.Println("Lesson types seeded")
		}
	}

	var appCount int64
	DB.Model(&models.Apparatus{}).Count(&appCount)
	if appCount == 0 {
		apparatus := []models.Apparatus{
			{Name: "floor", SortOrder: 1},
			{Name: "beam", SortOrder: 2},
			{Name: "bars", SortOrder: 3},
			{Name: "vault", SortOrder: 4},
			{Name: "trampoline", SortOrder: 5},
			{Name: "tumble-track", SortOrder: 6},
		}
		if err := DB.Create(&apparatus).Error; err != nil {
			log.Printf("warning: failed to seed apparatus: %v", err)
			return
		}
		log.Println("Apparatus seeded")

		byName := map[string]uint{}
		for _, a := range apparatus {
			byName[a.Name] = a.ID
		}
		floorID := byName["floor"]
		beamID := byName["beam"]

		focusAreas := []models.FocusArea{
			{Name: "tumbling", ApparatusID: &floorID},
			{Name: "back-handspring", ApparatusID: &floorID},
			{Name: "cartwheel", ApparatusID: &floorID},
			{Name: "balance", ApparatusID: &beamID},
		}
		if err := DB.Create(&focusAreas).Error; err != nil {
			log.Printf("warning: failed to seed focus areas: %v", err)
		}

		skills := []models.Skill{
			{Name: "forward roll", ApparatusID: &floorID, Level: "beginner"},
			{Name: "cartwheel", ApparatusID: &floorID, Level: "beginner"},
			{Name: "back handspring", ApparatusID: &floorID, Level: "intermediate"},
			{Name: "beam walk", ApparatusID: &beamID, Level: "beginner"},
		}
		if err := DB.Create(&skills).Error; err != nil {
			log.Printf("warning: failed to seed skills: %v", err)
		}
	}

	var sqCount int64
	DB.Model(&models.SideQuest{}).Count(&sqCount)
	if sqCount == 0 {
		quests := []models.SideQuest{
			{Name: "flexibility"},
			{Name: "strength"},
			{Name: "agility"},
		}
		if err := DB.Create(&quests).Error; err != nil {
			log.Printf("warning: failed to seed side quests: %v", err)
		}
	}

	var contentCount int64
	DB.Model(&models.SiteContent{}).Count(&contentCount)
	if contentCount == 0 {
		content := models.SiteContent{
			Slug:  "welcome",
			Title: "Welcome",
			Body:  "Book a lesson and start your gymnastics journey.",
		}
		if err := DB.Create(&content).Error; err != nil {
			log.Printf("warning: failed to seed site content: %v", err)
		}
	}
}
