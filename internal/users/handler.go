// Package users implements the /api/users REST resource on top of the database helper.
package users

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/indigo-web/restcore/db"
	"github.com/indigo-web/restcore/http"
	"github.com/indigo-web/restcore/http/method"
	"github.com/indigo-web/restcore/http/status"
	json "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

const table = "users"

var (
	schema = []db.Column{
		{Name: "id", Definition: "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{Name: "name", Definition: "TEXT NOT NULL"},
		{Name: "email", Definition: "TEXT NOT NULL DEFAULT ''"},
	}
	columns = []string{"id", "name", "email"}
)

var (
	errMissingName = status.NewPublicError(status.BadRequest, "name is required")
	errMissingID   = status.NewPublicError(status.BadRequest, "user id is required")
	errBadJSON     = status.NewPublicError(status.BadRequest, "malformed JSON body")
	errNoFields    = status.NewPublicError(status.BadRequest, "nothing to update")
	errNoRowID     = errors.New("last_insert_rowid() returned no rows")
)

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type envelope struct {
	Status string `json:"status"`
	User   User   `json:"user"`
}

type deleted struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// Handler serves all the methods of the resource. The helper is shared between
// workers, so every access to it is serialized.
type Handler struct {
	mu     sync.Mutex
	helper *db.Helper
	log    zerolog.Logger
}

// New creates the users table, if it doesn't exist yet.
func New(helper *db.Helper, log zerolog.Logger) (*Handler, error) {
	if err := helper.CreateTable(table, schema); err != nil {
		return nil, fmt.Errorf("create users table: %w", err)
	}

	return &Handler{
		helper: helper,
		log:    log,
	}, nil
}

func (h *Handler) Serve(request *http.Request) *http.Response {
	h.log.Debug().
		Str("method", request.Method.String()).
		Str("path", request.Path).
		Msg("users")

	switch request.Method {
	case method.GET:
		return h.list(request)
	case method.POST:
		return h.create(request)
	case method.PUT:
		return h.update(request)
	case method.DELETE:
		return h.delete(request)
	default:
		return http.Error(request, status.ErrNotFound)
	}
}

func (h *Handler) list(request *http.Request) *http.Response {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rawID, found := request.Param("id"); found {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return http.Error(request, errMissingID)
		}

		user, found, err := h.find(id)
		switch {
		case err != nil:
			return h.internal(request, err)
		case !found:
			return http.Error(request, status.ErrNotFound)
		default:
			return request.Respond().JSON(user)
		}
	}

	result := h.helper.Select(table, columns)
	if !result.Success {
		return h.internal(request, result.Err())
	}

	users := make([]User, 0, len(result.Rows))
	for _, row := range result.Rows {
		users = append(users, fromRow(row))
	}

	return request.Respond().JSON(users)
}

func (h *Handler) create(request *http.Request) *http.Response {
	var user User
	if err := decode(request, &user); err != nil {
		return http.Error(request, err)
	}

	if len(user.Name) == 0 {
		return http.Error(request, errMissingName)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.helper.Insert(table, []string{"name", "email"}, []string{escape(user.Name), escape(user.Email)})
	if err != nil {
		return h.internal(request, err)
	}

	// the backend is a single connection, so the rowid belongs to the insert above
	result := h.helper.Backend().Query("SELECT last_insert_rowid();")
	if err = result.Err(); err != nil {
		return h.internal(request, err)
	}

	if len(result.Rows) == 0 || len(result.Rows[0]) == 0 {
		return h.internal(request, errNoRowID)
	}

	user.ID, _ = strconv.ParseInt(result.Rows[0][0], 10, 64)

	return request.Respond().
		Code(status.Created).
		JSON(envelope{Status: "created", User: user})
}

func (h *Handler) update(request *http.Request) *http.Response {
	var user User
	if err := decode(request, &user); err != nil {
		return http.Error(request, err)
	}

	id, err := resolveID(request, user.ID)
	if err != nil {
		return http.Error(request, err)
	}

	var assignments []db.Assignment
	if len(user.Name) > 0 {
		assignments = append(assignments, db.Assignment{Column: "name", Value: escape(user.Name)})
	}

	if len(user.Email) > 0 {
		assignments = append(assignments, db.Assignment{Column: "email", Value: escape(user.Email)})
	}

	if len(assignments) == 0 {
		return http.Error(request, errNoFields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, found, err := h.find(id)
	switch {
	case err != nil:
		return h.internal(request, err)
	case !found:
		return http.Error(request, status.ErrNotFound)
	}

	if err = h.helper.Update(table, assignments, whereID(id)); err != nil {
		return h.internal(request, err)
	}

	updated, _, err := h.find(id)
	if err != nil {
		return h.internal(request, err)
	}

	return request.Respond().JSON(envelope{Status: "updated", User: updated})
}

func (h *Handler) delete(request *http.Request) *http.Response {
	var user User
	if len(request.Body) > 0 {
		if err := decode(request, &user); err != nil {
			return http.Error(request, err)
		}
	}

	id, err := resolveID(request, user.ID)
	if err != nil {
		return http.Error(request, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, found, err := h.find(id)
	switch {
	case err != nil:
		return h.internal(request, err)
	case !found:
		return http.Error(request, status.ErrNotFound)
	}

	if err = h.helper.Delete(table, whereID(id)); err != nil {
		return h.internal(request, err)
	}

	return request.Respond().JSON(deleted{Status: "deleted", ID: id})
}

// find must be called with the mutex held.
func (h *Handler) find(id int64) (User, bool, error) {
	result := h.helper.SelectWhere(table, columns, whereID(id))
	if !result.Success {
		return User{}, false, result.Err()
	}

	if len(result.Rows) == 0 {
		return User{}, false, nil
	}

	return fromRow(result.Rows[0]), true, nil
}

func (h *Handler) internal(request *http.Request, err error) *http.Response {
	h.log.Error().Err(err).Str("method", request.Method.String()).Msg("users storage failure")
	return http.Error(request, status.ErrInternalServerError)
}

func decode(request *http.Request, user *User) error {
	if len(request.Body) == 0 {
		return nil
	}

	if err := json.ConfigCompatibleWithStandardLibrary.Unmarshal(request.Body, user); err != nil {
		return errBadJSON
	}

	return nil
}

// resolveID prefers the id query parameter over the one from the body.
func resolveID(request *http.Request, fromBody int64) (int64, error) {
	if rawID, found := request.Param("id"); found {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			return 0, errMissingID
		}

		return id, nil
	}

	if fromBody <= 0 {
		return 0, errMissingID
	}

	return fromBody, nil
}

func whereID(id int64) string {
	return "id = " + strconv.FormatInt(id, 10)
}

func fromRow(row []string) User {
	id, _ := strconv.ParseInt(row[0], 10, 64)

	return User{
		ID:    id,
		Name:  row[1],
		Email: row[2],
	}
}

// escape doubles single quotes, as the helper substitutes values literally.
func escape(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}
