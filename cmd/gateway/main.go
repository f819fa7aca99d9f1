package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/study-path/studypath-lms/internal/activity"
	api "github.com/study-path/studypath-lms/internal/api/http"
	auth "github.com/study-path/studypath-lms/internal/auth/middleware"
	"github.com/study-path/studypath-lms/internal/config"
	"github.com/study-path/studypath-lms/internal/content"
	"github.com/study-path/studypath-lms/internal/db"
	"github.com/study-path/studypath-lms/internal/grading"
	"github.com/study-path/studypath-lms/internal/notify"
	"github.com/study-path/studypath-lms/internal/progress"
	"github.com/study-path/studypath-lms/internal/rbac"
	"github.com/study-path/studypath-lms/internal/report"
	"github.com/study-path/studypath-lms/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}

	acts := activity.NewSQLStore(dbh)
	contentStore := content.NewSQLStore(dbh)
	events := notify.NewEventRepo(dbh)

	grader := grading.NewDefaultGrader(log)
	grades := grading.NewService(acts, contentStore, grader, events, log)
	tracker := progress.NewTracker(acts, contentStore, grades, events, log)

	reports, err := report.DefaultRegistry(report.Sources{
		Acts:    acts,
		Content: contentStore,
		Tracker: tracker,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("report registry")
	}

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("blob store")
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, auth.LoginOpts{
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
	}))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		// Authoring (teacher/admin)
		pr.With(rbac.Require("content:author")).Post("/courses", api.PutCourseHandler(contentStore))
		pr.With(rbac.Require("content:author")).Post("/lessons", api.PutLessonHandler(contentStore))
		pr.With(rbac.Require("content:author")).Post("/quizzes", api.PutQuizHandler(contentStore))

		// Content reads
		pr.With(rbac.Require("course:view")).Get("/courses", api.ListCoursesHandler(contentStore))
		pr.With(rbac.Require("course:view")).Get("/courses/{courseID}", api.GetCourseHandler(contentStore))
		pr.With(rbac.Require("quiz:view")).Get("/quizzes/{quizID}", api.GetQuizHandler(contentStore))

		// Learner flow
		pr.With(rbac.Require("course:start")).Post("/courses/{courseID}/start", api.StartCourseHandler(tracker))
		pr.With(rbac.Require("lesson:start")).Post("/lessons/{lessonID}/start", api.StartLessonHandler(tracker))
		pr.With(rbac.Require("lesson:complete")).Post("/lessons/{lessonID}/complete", api.CompleteLessonHandler(tracker))
		pr.With(rbac.Require("quiz:submit")).Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(grades))

		// Status and grades
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/courses/{courseID}/status", api.CourseStatusHandler(tracker))
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/lessons/{lessonID}/status", api.LessonStatusHandler(tracker))
		pr.With(rbac.RequireAny("grade:view-own", "grade:view-all")).
			Get("/quizzes/{quizID}/grade", api.QuizGradeHandler(grades))

		// Manual grading (teacher/admin)
		pr.With(rbac.Require("quiz:grade")).Post("/questions/{questionID}/grade", api.ManualGradeHandler(grades))

		// Reports (teacher/admin)
		pr.With(rbac.Require("reports:view")).Get("/reports", api.ListReportsHandler(reports))
		pr.With(rbac.Require("reports:view")).Get("/reports/{reportID}", api.ReportRowsHandler(reports))

		// Media assets
		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, bs)
		})
	})

	log.Info().Str("addr", cfg.HTTPAddr).Str("driver", cfg.DBDriver).Msg("gateway listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
