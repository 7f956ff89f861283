package handler

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Interns      *InternHandler
	Dashboard    *DashboardHandler
	Lessons      *LessonHandler
	Mentors      *MentorHandler
	Ratings      *RatingHandler
	Violations   *ViolationHandler
	Applications *ApplicationHandler
	Questions    *QuestionHandler
	Jobs         *JobHandler
}

// RegisterRoutes mounts the API routes on group.
func RegisterRoutes(group *gin.RouterGroup, h Handlers) {
	group.GET("/grades", h.Interns.Grades)

	interns := group.Group("/interns")
	interns.GET("", h.Interns.List)
	interns.POST("", h.Interns.Create)
	interns.GET("/:id", h.Interns.Get)
	interns.PUT("/:id", h.Interns.Update)
	interns.DELETE("/:id", h.Interns.Delete)
	interns.POST("/:id/promote", h.Interns.Promote)
	interns.GET("/:id/dashboard", h.Dashboard.Get)
	interns.POST("/:id/lessons", h.Lessons.Record)
	interns.POST("/:id/violations", h.Violations.Record)

	lessons := group.Group("/lessons")
	lessons.GET("/attendance", h.Lessons.Attendance)
	lessons.POST("/:id/rate", h.Lessons.Rate)

	mentors := group.Group("/mentors")
	mentors.GET("", h.Mentors.List)
	mentors.GET("/debt", h.Mentors.AllDebt)
	mentors.GET("/:id/debt", h.Mentors.Debt)
	mentors.GET("/:id/stats", h.Mentors.Stats)

	group.GET("/ratings", h.Ratings.List)
	group.GET("/ratings/export", h.Ratings.Export)

	group.GET("/rules", h.Violations.Rules)
	group.POST("/rules", h.Violations.CreateRule)
	group.GET("/violations", h.Violations.List)

	applications := group.Group("/applications")
	applications.GET("", h.Applications.List)
	applications.POST("", h.Applications.Register)
	applications.POST("/login", h.Applications.Login)
	applications.GET("/:id", h.Applications.Get)
	applications.PUT("/:id/details", h.Applications.Complete)
	applications.PATCH("/:id/status", h.Applications.UpdateStatus)
	applications.PUT("/:id/project", h.Applications.AttachProject)

	questions := group.Group("/questions")
	questions.GET("", h.Questions.List)
	questions.POST("", h.Questions.Create)
	questions.PUT("/:id", h.Questions.Update)
	questions.DELETE("/:id", h.Questions.Delete)

	group.GET("/jobs", h.Jobs.List)
	group.POST("/jobs/:name/run", h.Jobs.Run)
}
