package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/coaching-api/internal/middleware"
	"github.com/noah-isme/coaching-api/internal/models"
	"github.com/noah-isme/coaching-api/pkg/config"
)

var (
	adminOnly     = middleware.RequireRoles(models.RoleAdmin)
	staff         = middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	anyRole       = middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleStudent)
	learnerFacing = middleware.RequireRoles(models.RoleAdmin, models.RoleStudent)
	adminOrSelf   = middleware.RBAC(string(models.RoleAdmin), middleware.RoleSelf)
	staffOrSelf   = middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), middleware.RoleSelf)
)

func registerRoutes(r *gin.Engine, cfg *config.Config, app *application) {
	r.GET("/health", app.metricsHandler.Health)
	r.GET("/ready", app.metricsHandler.Ready)
	r.GET("/metrics", app.metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", app.authHandler.Login)
	api.GET("/auth/check", app.authHandler.Check)
	api.POST("/career-applications", app.careerHandler.Submit)
	api.GET("/files/download", app.fileHandler.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(app.auth))

	students := secured.Group("/students")
	students.GET("/assignments", anyRole, app.courseworkHandler.ListForStudent)
	students.GET("/teacher/:teacherId", staffOrSelf, app.studentHandler.ListByTeacher)
	students.POST("", adminOnly, app.studentHandler.Create)
	students.GET("", staff, app.studentHandler.List)
	students.GET("/:id", staffOrSelf, app.studentHandler.Get)
	students.PUT("/:id", adminOnly, app.studentHandler.Update)
	students.DELETE("/:id", adminOnly, app.studentHandler.Delete)

	teachers := secured.Group("/teachers")
	teachers.POST("/assignments", staff, app.courseworkHandler.UploadAssignment)
	teachers.GET("/assignments", anyRole, app.courseworkHandler.ListAssignments)
	teachers.POST("/assignments/submit", learnerFacing, app.courseworkHandler.SubmitProject)
	teachers.GET("/assignments/projects", staff, app.courseworkHandler.ListProjects)
	teachers.POST("/assignments/score", staff, app.courseworkHandler.ScoreProject)
	teachers.POST("", adminOnly, app.teacherHandler.Create)
	teachers.GET("", anyRole, app.teacherHandler.List)
	teachers.GET("/:id", anyRole, app.teacherHandler.Get)
	teachers.PUT("/:id", adminOnly, app.teacherHandler.Update)
	teachers.DELETE("/:id", adminOnly, app.teacherHandler.Delete)
	teachers.GET("/:id/students", adminOrSelf, app.teacherHandler.ListStudents)
	teachers.GET("/:id/students/export", adminOrSelf, app.teacherHandler.ExportStudents)
	teachers.POST("/:id/assign-student", adminOnly, app.teacherHandler.AssignStudent)
	teachers.DELETE("/:id/remove-student/:studentId", adminOnly, app.teacherHandler.RemoveStudent)
	teachers.POST("/:id/classes", adminOnly, app.classHandler.CreateForTeacher)
	teachers.GET("/:id/classes", adminOrSelf, app.classHandler.ListForTeacher)

	classes := secured.Group("/classes")
	classes.GET("", anyRole, app.classHandler.List)
	classes.POST("", adminOnly, app.classHandler.Create)
	classes.GET("/:id", anyRole, app.classHandler.Get)
	classes.PUT("/:id", adminOnly, app.classHandler.Update)
	classes.PATCH("/:id/live", staff, app.classHandler.SetLive)
	classes.DELETE("/:id", adminOnly, app.classHandler.Delete)

	attendance := secured.Group("/attendance")
	attendance.POST("/mark", staff, app.attendanceHandler.Mark)
	attendance.GET("/student/:studentId", staffOrSelf, app.attendanceHandler.ListForStudent)
	attendance.GET("/class/:classId/export", staff, app.attendanceHandler.ExportForClass)

	secured.POST("/quizzes", staff, app.quizHandler.Create)
	secured.GET("/quizzes", anyRole, app.quizHandler.Latest)
	secured.GET("/covered-topics", anyRole, app.quizHandler.GetCoveredTopics)
	secured.POST("/covered-topics", staff, app.quizHandler.SaveCoveredTopics)

	extensions := secured.Group("/class-extension-requests")
	extensions.POST("", staff, app.extensionHandler.Create)
	extensions.GET("", adminOnly, app.extensionHandler.List)
	extensions.PUT("/:id/approve", adminOnly, app.extensionHandler.Approve)
	extensions.PUT("/:id/reject", adminOnly, app.extensionHandler.Reject)

	secured.GET("/career-applications", adminOnly, app.careerHandler.List)

	integrity := secured.Group("/admin/integrity", adminOnly)
	integrity.GET("/scan", app.integrityHandler.Scan)
	integrity.POST("/repair", app.integrityHandler.Repair)
	integrity.POST("/repair/async", app.integrityHandler.RepairAsync)
	integrity.GET("/repair/:jobId", app.integrityHandler.RepairStatus)
}
