package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/taskstack/taskboard/internal/db"
)

type API struct {
	address   string
	router    *mux.Router
	store     *db.DB
	log       zerolog.Logger
	uploadDir string
}

func NewAPI(
	address string,
	router *mux.Router,
	store *db.DB,
	logger zerolog.Logger,
	uploadDir string,
) *API {
	return &API{
		address:   address,
		router:    router,
		store:     store,
		log:       logger,
		uploadDir: uploadDir,
	}
}

func (a *API) initRoutes() {
	// JSON surface
	a.router.HandleFunc("/api/tasks", a.handleListTasks).Methods(http.MethodGet)
	a.router.HandleFunc("/api/tasks", a.handleCreateTask).Methods(http.MethodPost)
	a.router.HandleFunc("/api/tasks/{id:[0-9]+}", a.handleGetTask).Methods(http.MethodGet)
	a.router.HandleFunc("/api/tasks/{id:[0-9]+}", a.handleUpdateTask).Methods(http.MethodPut)
	a.router.HandleFunc("/api/tasks/{id:[0-9]+}", a.handleDeleteTask).Methods(http.MethodDelete)
	a.router.HandleFunc("/api/status", a.handleStatus).Methods(http.MethodGet)

	a.router.HandleFunc("/api/users", a.handleListUsers).Methods(http.MethodGet)
	a.router.HandleFunc("/api/users", a.handleCreateUser).Methods(http.MethodPost)
	a.router.HandleFunc("/api/users/{id:[0-9]+}", a.handleDeleteUser).Methods(http.MethodDelete)

	a.router.HandleFunc("/api/categories", a.handleListCategories).Methods(http.MethodGet)
	a.router.HandleFunc("/api/categories", a.handleCreateCategory).Methods(http.MethodPost)
	a.router.HandleFunc("/api/categories/{id:[0-9]+}", a.handleDeleteCategory).Methods(http.MethodDelete)

	a.router.HandleFunc("/api/projects", a.handleListProjects).Methods(http.MethodGet)
	a.router.HandleFunc("/api/projects", a.handleCreateProject).Methods(http.MethodPost)
	a.router.HandleFunc("/api/projects/{id:[0-9]+}", a.handleGetProject).Methods(http.MethodGet)
	a.router.HandleFunc("/api/projects/{id:[0-9]+}", a.handleUpdateProject).Methods(http.MethodPut)

	a.router.HandleFunc("/api/tasks/{id:[0-9]+}/comments", a.handleListComments).Methods(http.MethodGet)
	a.router.HandleFunc("/api/tasks/{id:[0-9]+}/comments", a.handleCreateComment).Methods(http.MethodPost)
	a.router.HandleFunc("/api/tasks/{id:[0-9]+}/attachments", a.handleListAttachments).Methods(http.MethodGet)
	a.router.HandleFunc("/api/tasks/{id:[0-9]+}/attachments", a.handleUploadAttachment).Methods(http.MethodPost)

	// HTML form surface
	a.router.HandleFunc("/", a.handleHome).Methods(http.MethodGet)
	a.router.HandleFunc("/add", a.handleFormCreate).Methods(http.MethodPost)
	a.router.HandleFunc("/delete/{id:[0-9]+}", a.handleFormDelete).Methods(http.MethodPost)
}

// Handler wires the routes and returns the router, for tests and for
// embedding under another server.
func (a *API) Handler() http.Handler {
	a.initRoutes()
	return a.router
}

func (a *API) Start() error {
	a.initRoutes()

	a.log.Info().Str("address", a.address).Msg("starting HTTP server")
	return http.ListenAndServe(a.address, a.router)
}
