package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"diabetes-care-backend/internal/adapters/food/local"
	"diabetes-care-backend/internal/adapters/food/remote"
	mem "diabetes-care-backend/internal/adapters/storage/memory"
	pg "diabetes-care-backend/internal/adapters/storage/postgres"
	"diabetes-care-backend/internal/domain/activities"
	"diabetes-care-backend/internal/domain/bloodsugar"
	"diabetes-care-backend/internal/domain/careteam"
	"diabetes-care-backend/internal/domain/meals"
	"diabetes-care-backend/internal/domain/medications"
	"diabetes-care-backend/internal/domain/profile"
	"diabetes-care-backend/internal/middleware"
	"diabetes-care-backend/internal/platform/logger"
	"diabetes-care-backend/internal/ports/auth"
	"diabetes-care-backend/internal/ports/food"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: base de alimentos. Si no viene, se arma desde env
	// (FOOD_API_BASE_URL) con fallback a la base embebida.
	Foods food.Resolver

	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		profileRepo    profile.Repository
		mealRepo       meals.Repository
		activityRepo   activities.Repository
		readingRepo    bloodsugar.Repository
		medicationRepo medications.Repository
		grantsRepo     careteam.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("could not open postgres, falling back to memory", map[string]any{
					"error": err.Error(),
				})
			}
		}
	}

	if db != nil {
		profileRepo = pg.NewProfileRepo(db)
		mealRepo = pg.NewMealsRepo(db)
		activityRepo = pg.NewActivitiesRepo(db)
		readingRepo = pg.NewBloodSugarRepo(db)
		medicationRepo = pg.NewMedicationsRepo(db)
		grantsRepo = pg.NewCareTeamRepo(db)
	} else {
		profileRepo = mem.NewProfileRepo()
		mealRepo = mem.NewMealRepo()
		activityRepo = mem.NewActivityRepo()
		readingRepo = mem.NewReadingRepo()
		medicationRepo = mem.NewMedicationRepo()
		grantsRepo = mem.NewCareTeamRepo()
	}

	foods := opts.Foods
	if foods == nil {
		foods = foodResolverFromEnv(log)
	}

	// Services por módulo
	profileSvc := profile.NewService(profileRepo)
	grantsSvc := careteam.NewService(grantsRepo)
	medicationsSvc := medications.NewService(medicationRepo)
	activitiesSvc := activities.NewService(activityRepo)
	readingsSvc := bloodsugar.NewService(readingRepo, profileSvc)
	mealsSvc := meals.NewService(mealRepo, profileSvc, foods, medicationsSvc, log)

	// Rutas por módulo
	profile.RegisterRoutes(r, profileSvc, grantsSvc)
	careteam.RegisterRoutes(r, grantsSvc)
	meals.RegisterRoutes(r, mealsSvc, grantsSvc)
	activities.RegisterRoutes(r, activitiesSvc, grantsSvc)
	bloodsugar.RegisterRoutes(r, readingsSvc, grantsSvc)
	medications.RegisterRoutes(r, medicationsSvc, grantsSvc)

	return r
}

func foodResolverFromEnv(log logger.Logger) food.Resolver {
	fallback := local.NewResolver()

	baseURL := os.Getenv("FOOD_API_BASE_URL")
	if baseURL == "" {
		return fallback
	}

	resolver, err := remote.NewResolver(remote.Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("FOOD_API_KEY"),
		Timeout: 5 * time.Second,
	}, fallback)
	if err != nil {
		log.Warn("invalid food api config, using embedded catalog", map[string]any{
			"error": err.Error(),
		})
		return fallback
	}
	return resolver
}

func allowedOrigins() []string {
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		return []string{v}
	}
	return []string{"*"}
}
