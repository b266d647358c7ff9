package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bimbelku_backend/internals/configs"
	attendanceModel "bimbelku_backend/internals/features/tutoring/attendance/model"
	batchModel "bimbelku_backend/internals/features/tutoring/batches/model"
	feeModel "bimbelku_backend/internals/features/tutoring/fees/model"
	studentModel "bimbelku_backend/internals/features/tutoring/students/model"
	testModel "bimbelku_backend/internals/features/tutoring/tests/model"
	userModel "bimbelku_backend/internals/features/users/user/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Koneksi ke PostgreSQL...")

	sslmode := configs.GetEnv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=bimbelku&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // 👍 aman untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
}

func Migrate() {
	err := DB.AutoMigrate(
		&userModel.UserModel{},
		&batchModel.BatchModel{},
		&studentModel.StudentModel{},
		&batchModel.BatchStudentModel{},
		&attendanceModel.AttendanceDayModel{},
		&attendanceModel.AttendanceRecordModel{},
		&feeModel.FeeModel{},
		&feeModel.PaymentEventModel{},
		&testModel.TestModel{},
		&testModel.TestResultModel{},
	)
	if err != nil {
		log.Fatalf("❌ Migrasi gagal: %v", err)
	}
}

// EnsureIndexes membuat unique index yang menjadi penjaga race di storage:
//   - satu AttendanceDay per (batch, tanggal)
//   - satu fee bulanan per (student, batch, month)
//
// Aplikasi tetap mengecek duplikat untuk pesan error yang ramah, tapi
// kebenaran akhirnya ada di constraint ini.
func EnsureIndexes() {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_attendance_days_batch_date
			ON attendance_days (attendance_day_batch_id, attendance_day_date)
			WHERE attendance_day_deleted_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_fees_monthly_student_batch_month
			ON fees (fee_student_id, fee_batch_id, fee_month)
			WHERE fee_type = 'monthly' AND fee_deleted_at IS NULL`,
	}
	for _, s := range stmts {
		if err := DB.Exec(s).Error; err != nil {
			log.Printf("[WARN] ensure index gagal: %v", err)
		}
	}
}
