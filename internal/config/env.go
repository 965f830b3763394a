package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	JWTSecret string

	MidtransServerKey string
	MidtransBaseURL   string
	MidtransSnapURL   string

	KafkaBrokers      []string
	NotificationTopic string

	CORSOrigins []string

	SweepInterval time.Duration
}

func LoadEnv() Env {
	if err := godotenv.Load(); err != nil {
		// .env opsional; environment dari shell tetap dipakai
		log.Println("file .env tidak ditemukan, pakai environment proses")
	}

	env := Env{
		AppAddr:           getEnv("APP_ADDR", ":8080"),
		GinMode:           getEnv("GIN_MODE", ""),
		DBUser:            getEnv("DB_USER", "root"),
		DBPass:            getEnv("DB_PASS", ""),
		DBHost:            getEnv("DB_HOST", "127.0.0.1:3306"),
		DBName:            getEnv("DB_NAME", "tour_booking"),
		JWTSecret:         getEnv("JWT_SECRET", "super-secret-key-change-me"),
		MidtransServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransBaseURL:   getEnv("MIDTRANS_BASE_URL", "https://api.sandbox.midtrans.com"),
		MidtransSnapURL:   getEnv("MIDTRANS_SNAP_URL", "https://app.sandbox.midtrans.com/snap/v1"),
		NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "booking-notifications"),
		SweepInterval:     10 * time.Minute,
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				env.KafkaBrokers = append(env.KafkaBrokers, b)
			}
		}
	}

	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSOrigins = append(env.CORSOrigins, o)
			}
		}
	}

	if raw := getEnv("BOOKING_SWEEP_INTERVAL", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			env.SweepInterval = d
		} else {
			log.Printf("BOOKING_SWEEP_INTERVAL tidak valid (%q), pakai default", raw)
		}
	}

	return env
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
