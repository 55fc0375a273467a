package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"trove/app/controllers"
	"trove/app/middleware"
	"trove/app/models"
)

// userPolicy is the static (route, allowed-role-set) table the role gate
// enforces. Adding a route here is the only way to open it.
type userPolicy struct {
	method string
	path   string
	roles  []models.Role
}

var userPolicies = []userPolicy{
	{http.MethodGet, "", []models.Role{models.RoleAdmin, models.RoleSuperAdmin}},
	{http.MethodGet, "/{id}", []models.Role{models.RoleAdmin, models.RoleSuperAdmin, models.RoleModerator}},
	{http.MethodPut, "/{id}", []models.Role{models.RoleAdmin, models.RoleSuperAdmin}},
	{http.MethodDelete, "/{id}", []models.Role{models.RoleSuperAdmin}},
}

func New(authCtrl *controllers.AuthController, oauthCtrl *controllers.OAuthController, userCtrl *controllers.UserController, itemCtrl *controllers.ItemController, mw *middleware.Auth) http.Handler {
	r := mux.NewRouter()

	a := r.PathPrefix("/auth").Subrouter()
	a.HandleFunc("/register", authCtrl.Register).Methods(http.MethodPost)
	a.HandleFunc("/login", authCtrl.Login).Methods(http.MethodPost)
	a.Handle("/logout", mw.RequireAuth(http.HandlerFunc(authCtrl.Logout))).Methods(http.MethodPost)
	a.HandleFunc("/github", oauthCtrl.Begin("github")).Methods(http.MethodGet)
	a.HandleFunc("/github/callback", oauthCtrl.Callback("github", "GitHub authentication successful")).Methods(http.MethodGet)
	a.HandleFunc("/google", oauthCtrl.Begin("google")).Methods(http.MethodGet)
	a.HandleFunc("/google/callback", oauthCtrl.Callback("google", "Logged in with Google")).Methods(http.MethodGet)

	it := r.PathPrefix("/items").Subrouter()
	it.Use(mw.RequireAuth)
	it.HandleFunc("/add", itemCtrl.Create).Methods(http.MethodPost)
	it.HandleFunc("/getAll", itemCtrl.GetAll).Methods(http.MethodGet)
	it.HandleFunc("/getItem/{id}", itemCtrl.GetByID).Methods(http.MethodGet)
	it.HandleFunc("/edit/{id}", itemCtrl.Update).Methods(http.MethodPut)
	it.HandleFunc("/delete/{id}", itemCtrl.Delete).Methods(http.MethodDelete)
	it.HandleFunc("/{itemId}/view", itemCtrl.AddView).Methods(http.MethodPost)
	it.HandleFunc("/{itemId}/like", itemCtrl.ToggleLike).Methods(http.MethodPost)
	it.HandleFunc("/{itemId}/comment", itemCtrl.AddComment).Methods(http.MethodPost)
	it.HandleFunc("/{itemId}/comments", itemCtrl.ListComments).Methods(http.MethodGet)
	it.HandleFunc("/{commentId}/edit", itemCtrl.UpdateComment).Methods(http.MethodPut)
	it.HandleFunc("/{commentId}/delete", itemCtrl.DeleteComment).Methods(http.MethodDelete)

	u := r.PathPrefix("/users").Subrouter()
	u.Use(mw.RequireAuth)
	userHandlers := map[string]http.HandlerFunc{
		http.MethodGet + "":         userCtrl.List,
		http.MethodGet + "/{id}":    userCtrl.Get,
		http.MethodPut + "/{id}":    userCtrl.Update,
		http.MethodDelete + "/{id}": userCtrl.Delete,
	}
	for _, p := range userPolicies {
		h := userHandlers[p.method+p.path]
		u.Handle(p.path, mw.RequireRole(h, p.roles...)).Methods(p.method)
	}

	return r
}
