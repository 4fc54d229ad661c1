package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/budget"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/category"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/dashboard"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/goal"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/notification"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/seeder"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/transaction"
)

// dateLayout is the wire format for calendar dates
const dateLayout = "2006-01-02"

// Server bundles the usecase services behind the REST API
type Server struct {
	BudgetService       *budget.Service
	CategoryService     *category.Service
	TransactionService  *transaction.Service
	GoalService         *goal.Service
	NotificationService *notification.Service
	DashboardService    *dashboard.Service
	CategorySeeder      *seeder.CategorySeeder
	Log                 *logrus.Logger
}

// NewServer creates a new REST server instance
func NewServer(
	budgetService *budget.Service,
	categoryService *category.Service,
	transactionService *transaction.Service,
	goalService *goal.Service,
	notificationService *notification.Service,
	dashboardService *dashboard.Service,
	categorySeeder *seeder.CategorySeeder,
	log *logrus.Logger,
) *Server {
	return &Server{
		BudgetService:       budgetService,
		CategoryService:     categoryService,
		TransactionService:  transactionService,
		GoalService:         goalService,
		NotificationService: notificationService,
		DashboardService:    dashboardService,
		CategorySeeder:      categorySeeder,
		Log:                 log,
	}
}

// Router builds the gin engine with all routes mounted under /api/v1.
// Every API route sits behind TokenAuth; /healthz stays open for probes.
func (s *Server) Router(apiToken string, corsOrigins []string) *gin.Engine {
	registerValidations()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.Log))

	corsConfig := cors.DefaultConfig()
	if len(corsOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = corsOrigins
	}
	corsConfig.AddAllowMethods(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions)
	corsConfig.AddAllowHeaders("Authorization", "Content-Type", userIDHeader)
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api/v1", TokenAuth(apiToken))
	{
		api.POST("/budgets", s.createBudget)
		api.GET("/budgets", s.listBudgets)
		api.GET("/budgets/:id", s.getBudget)
		api.PUT("/budgets/:id", s.updateBudget)
		api.DELETE("/budgets/:id", s.deleteBudget)

		api.POST("/categories", s.createCategory)
		api.POST("/categories/defaults", s.seedDefaultCategories)
		api.GET("/categories", s.listCategories)
		api.DELETE("/categories/:id", s.deleteCategory)

		api.POST("/transactions", s.createTransaction)
		api.GET("/transactions", s.listTransactions)
		api.GET("/transactions/:id", s.getTransaction)
		api.PUT("/transactions/:id", s.updateTransaction)
		api.DELETE("/transactions/:id", s.deleteTransaction)

		api.POST("/goals", s.createGoal)
		api.GET("/goals", s.listGoals)
		api.GET("/goals/:id", s.getGoal)
		api.POST("/goals/:id/contributions", s.contributeGoal)
		api.DELETE("/goals/:id", s.deleteGoal)

		api.GET("/notifications", s.listNotifications)
		api.PUT("/notifications/:id/read", s.markNotificationRead)
		api.PUT("/notifications/read-all", s.markAllNotificationsRead)

		api.GET("/dashboard/summary", s.monthSummary)
	}

	return r
}

// registerValidations wires the domain enums into the binding validator so
// request structs can declare them as tags.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		return domain.Frequency(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("txtype", func(fl validator.FieldLevel) bool {
		return domain.TransactionType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("categorytype", func(fl validator.FieldLevel) bool {
		return domain.CategoryType(fl.Field().String()).Valid()
	})
}

// pathID parses the :id path parameter; it reports the error itself
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id format")
		return uuid.Nil, false
	}
	return id, true
}
