package main

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/handler"
	"github.com/noah-isme/coaching-api/internal/repository"
	"github.com/noah-isme/coaching-api/internal/service"
	"github.com/noah-isme/coaching-api/pkg/config"
	"github.com/noah-isme/coaching-api/pkg/jobs"
	"github.com/noah-isme/coaching-api/pkg/storage"
)

type application struct {
	metrics     *service.MetricsService
	auth        *service.AuthService
	repairQueue *jobs.Queue

	authHandler       *handler.AuthHandler
	studentHandler    *handler.StudentHandler
	teacherHandler    *handler.TeacherHandler
	classHandler      *handler.ClassHandler
	attendanceHandler *handler.AttendanceHandler
	courseworkHandler *handler.CourseworkHandler
	fileHandler       *handler.FileHandler
	quizHandler       *handler.QuizHandler
	extensionHandler  *handler.ExtensionHandler
	careerHandler     *handler.CareerHandler
	integrityHandler  *handler.IntegrityHandler
	metricsHandler    *handler.MetricsHandler
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) (*application, error) {
	validate := service.NewValidator()
	metrics := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	extensionRepo := repository.NewExtensionRequestRepository(db)
	careerRepo := repository.NewCareerRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "coaching", logr)

	blobs, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		return nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Integrity.ReportCacheTTL, logr, redisClient != nil)
	integritySvc := service.NewIntegrityService(studentRepo, teacherRepo, classRepo, cacheSvc, metrics, logr,
		service.IntegrityConfig{ReportTTL: cfg.Integrity.ReportCacheTTL})
	worker := service.NewRepairWorker(integritySvc)
	repairQueue := jobs.NewQueue("integrity-repair", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Integrity.RepairWorkers,
		MaxRetries: cfg.Integrity.RepairRetries,
		OnDone:     worker.Done,
		Logger:     logr,
	})
	integritySvc.UseQueue(repairQueue)

	rosterSvc := service.NewRosterService(studentRepo, teacherRepo, integritySvc, validate, logr,
		service.RosterConfig{EvictOnReassign: cfg.Roster.EvictOnReassign})
	authSvc := service.NewAuthService(studentRepo, teacherRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		Admin: service.AdminCredential{
			Email:        cfg.Admin.Email,
			Name:         cfg.Admin.Name,
			PasswordHash: cfg.Admin.PasswordHash,
		},
	})
	classSvc := service.NewClassService(classRepo, teacherRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, validate, logr)
	fileSvc := service.NewFileService(blobs, signer, logr, service.FileConfig{
		MaxFileSize: cfg.Uploads.MaxFileSizeBytes,
		APIPrefix:   cfg.APIPrefix,
	})
	courseworkSvc := service.NewCourseworkService(assignmentRepo, projectRepo, teacherRepo, studentRepo, fileSvc, validate, logr)
	quizSvc := service.NewQuizService(quizRepo, validate, logr)
	extensionSvc := service.NewExtensionRequestService(extensionRepo, classRepo, teacherRepo, validate, logr)
	careerSvc := service.NewCareerService(careerRepo, fileSvc, validate, logr)
	exportSvc := service.NewExportService(rosterSvc, classSvc, attendanceSvc, logr)

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}

	return &application{
		metrics:     metrics,
		auth:        authSvc,
		repairQueue: repairQueue,

		authHandler:       handler.NewAuthHandler(authSvc),
		studentHandler:    handler.NewStudentHandler(rosterSvc),
		teacherHandler:    handler.NewTeacherHandler(rosterSvc, exportSvc),
		classHandler:      handler.NewClassHandler(classSvc),
		attendanceHandler: handler.NewAttendanceHandler(attendanceSvc, exportSvc),
		courseworkHandler: handler.NewCourseworkHandler(courseworkSvc),
		fileHandler:       handler.NewFileHandler(fileSvc),
		quizHandler:       handler.NewQuizHandler(quizSvc),
		extensionHandler:  handler.NewExtensionHandler(extensionSvc),
		careerHandler:     handler.NewCareerHandler(careerSvc),
		integrityHandler:  handler.NewIntegrityHandler(integritySvc),
		metricsHandler:    handler.NewMetricsHandler(metrics, checks),
	}, nil
}
