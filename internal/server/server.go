package server

import (
	"log/slog"
	"net/http"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/kode4food/larder/internal/account"
	"github.com/kode4food/larder/internal/archive"
	"github.com/kode4food/larder/internal/order"
	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/internal/tokens"
	"github.com/kode4food/larder/internal/vegan"
)

type (
	// Server implements the HTTP API
	Server struct {
		store     *store.Store
		tokens    *tokens.Store
		sequencer *order.Sequencer
		accounts  *account.Service
		vegan     vegan.Checker
		archive   *archive.Archive
	}

	// Deps are the collaborators a Server is built from. Archive may be
	// nil, in which case deleted recipes are not archived
	Deps struct {
		Store     *store.Store
		Tokens    *tokens.Store
		Sequencer *order.Sequencer
		Accounts  *account.Service
		Vegan     vegan.Checker
		Archive   *archive.Archive
	}
)

// NewServer creates a new HTTP API server
func NewServer(deps Deps) *Server {
	return &Server{
		store:     deps.Store,
		tokens:    deps.Tokens,
		sequencer: deps.Sequencer,
		accounts:  deps.Accounts,
		vegan:     deps.Vegan,
		archive:   deps.Archive,
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, PATCH, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", s.handleHealth)

	root := router.Group("/api", s.authenticate)

	// Recipe and tag endpoints
	recipes := root.Group("/recipes")
	{
		recipes.GET("", s.listRecipes)
		recipes.POST("", s.requireUser, s.requireConfirmed, s.createRecipe)

		recipes.GET("/tags", s.listTags)
		recipes.POST("/tags", s.requireAdmin, s.createTag)
		recipes.GET("/tags/:slug", s.getTag)
		recipes.PUT("/tags/:slug", s.requireAdmin, s.renameTag)
		recipes.DELETE("/tags/:slug", s.requireAdmin, s.deleteTag)
	}

	// Account endpoints
	users := root.Group("/users")
	{
		users.GET("", s.listUsers)

		users.POST("/change-password", s.requireUser, s.changePassword)
		users.POST("/reset-password", s.resetPassword)
		users.POST("/reset-password-complete/:token", s.completeReset)
		users.POST("/check-password-strength", s.checkPasswordStrength)
		users.GET("/send-mail-confirm-email",
			s.requireUser, s.sendConfirmEmail)
		users.GET("/confirm-email/:token", s.confirmEmail)
		users.GET("/check-if-user-is-loggedin", s.checkLoggedIn)

		owner := []gin.HandlerFunc{s.loadAccount, s.requireAccountOwner}
		users.GET("/:username", s.loadAccount, s.getUser)
		users.PUT("/:username", append(owner, s.updateUser)...)
		users.PATCH("/:username", append(owner, s.updateUser)...)
		users.DELETE("/:username", append(owner, s.deleteUser)...)
		users.GET("/:username/favourite-recipes",
			append(owner, s.getFavourites)...)
		users.PUT("/:username/favourite-recipes",
			append(owner, s.setFavourites)...)
	}

	// Recipe detail and child resource endpoints
	recipe := users.Group("/:username/recipe/:slug", s.loadRecipe)
	{
		recipe.GET("", s.getRecipe)
		recipe.PUT("", s.updateRecipe)
		recipe.PATCH("", s.patchRecipe)
		recipe.DELETE("", s.deleteRecipe)

		recipe.GET("/steps", s.listSteps)
		recipe.POST("/steps", s.createStep)
		recipe.GET("/steps/:id", s.loadStep, s.getStep)
		recipe.PUT("/steps/:id", s.loadStep, s.updateStep)
		recipe.PATCH("/steps/:id", s.loadStep, s.updateStep)
		recipe.DELETE("/steps/:id", s.loadStep, s.deleteStep)
		recipe.POST("/steps/:id/change-order", s.loadStep, s.changeStepOrder)

		recipe.GET("/images", s.listImages)
		recipe.POST("/images", s.createImage)
		recipe.GET("/images/:id", s.loadImage, s.getImage)
		recipe.PUT("/images/:id", s.loadImage, s.updateImage)
		recipe.PATCH("/images/:id", s.loadImage, s.updateImage)
		recipe.DELETE("/images/:id", s.loadImage, s.deleteImage)
		recipe.POST("/images/:id/change-order",
			s.loadImage, s.changeImageOrder)

		recipe.GET("/ingredients", s.listIngredients)
		recipe.POST("/ingredients", s.createIngredient)
		recipe.GET("/ingredients/:id", s.loadIngredient, s.getIngredient)
		recipe.PUT("/ingredients/:id", s.loadIngredient, s.updateIngredient)
		recipe.PATCH("/ingredients/:id",
			s.loadIngredient, s.updateIngredient)
		recipe.DELETE("/ingredients/:id",
			s.loadIngredient, s.deleteIngredient)
	}

	return router
}
