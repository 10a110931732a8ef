package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"packtrack/internal/handler/api"
	"packtrack/internal/handler/middleware"
	"packtrack/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, receptionHandler *api.ReceptionHandler, packHandler *api.PackHandler, shiftHandler *api.ShiftHandler) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, receptionHandler, packHandler, shiftHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, receptionHandler *api.ReceptionHandler, packHandler *api.PackHandler, shiftHandler *api.ShiftHandler) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		receptions := apiGroup.Group("/receptions")
		receptions.Use(middleware.RequireActor())
		{
			addRoutes(receptions, []route{
				{Method: http.MethodPost, Path: "", Handler: receptionHandler.ReceiveBatch},
			})
		}

		stores := apiGroup.Group("/stores")
		{
			addRoutes(stores, []route{
				{Method: http.MethodGet, Path: "/:store_id/packs", Handler: packHandler.ListPacks},
				{Method: http.MethodGet, Path: "/:store_id/bins", Handler: packHandler.GetBinBoard},
			})
		}

		bins := apiGroup.Group("/bins")
		bins.Use(middleware.RequireActor())
		{
			addRoutes(bins, []route{
				{Method: http.MethodPost, Path: "/setup", Handler: packHandler.SetupBins},
			})
		}

		packs := apiGroup.Group("/packs")
		{
			addRoutes(packs, []route{
				{Method: http.MethodGet, Path: "/:id", Handler: packHandler.GetPack},
				{Method: http.MethodGet, Path: "/:id/movements", Handler: packHandler.GetMovementHistory},
			})

			packWrites := packs.Group("")
			packWrites.Use(middleware.RequireActor())
			addRoutes(packWrites, []route{
				{Method: http.MethodPost, Path: "/:id/move", Handler: packHandler.MovePack},
				{Method: http.MethodPost, Path: "/:id/activate", Handler: packHandler.ActivatePack},
				{Method: http.MethodPost, Path: "/:id/deplete", Handler: packHandler.MarkDepleted},
				{Method: http.MethodPost, Path: "/:id/return", Handler: packHandler.ReturnPack},
				{Method: http.MethodDelete, Path: "/:id", Handler: packHandler.DeletePack},
			})
		}

		shifts := apiGroup.Group("/shifts")
		{
			addRoutes(shifts, []route{
				{Method: http.MethodGet, Path: "/:id/report", Handler: shiftHandler.GetReport},
				{Method: http.MethodGet, Path: "/:id/variances", Handler: shiftHandler.ListVariances},
			})

			shiftWrites := shifts.Group("")
			shiftWrites.Use(middleware.RequireActor())
			addRoutes(shiftWrites, []route{
				{Method: http.MethodPost, Path: "/:id/openings", Handler: shiftHandler.RecordOpening},
				{Method: http.MethodPost, Path: "/:id/close", Handler: shiftHandler.CloseShift},
				{Method: http.MethodDelete, Path: "/:id", Handler: shiftHandler.DeleteShift},
			})
		}

		variances := apiGroup.Group("/variances")
		{
			addRoutes(variances, []route{
				{Method: http.MethodGet, Path: "/:id", Handler: shiftHandler.GetVariance},
			})

			varianceWrites := variances.Group("")
			varianceWrites.Use(middleware.RequireActor())
			addRoutes(varianceWrites, []route{
				{Method: http.MethodPost, Path: "/:id/approve", Handler: shiftHandler.ApproveVariance},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
