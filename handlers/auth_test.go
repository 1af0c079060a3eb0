package handlers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hackmate/apperr"
	"hackmate/database"
)

// authApp wires the auth routes against an isolated in-memory database,
// rendering errors the way main does.
func authApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	database.RunMigrations(db)
	database.SetDB(db)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	app.Post("/api/auth/register", Register)
	app.Post("/api/auth/login", Login)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	defer resp.Body.Close()

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, payload
}

func TestRegisterDuplicateAccountConflicts(t *testing.T) {
	app := authApp(t)
	body := `{"username":"dev","email":"dev@example.com","password":"supersecret","full_name":"Dev"}`

	status, payload := postJSON(t, app, "/api/auth/register", body)
	if status != fiber.StatusCreated {
		t.Fatalf("first register status = %d, want 201: %v", status, payload)
	}
	if token, _ := payload["token"].(string); token == "" {
		t.Error("first register returned no token")
	}

	// Any duplicate, including one that raced past the existence check onto
	// the unique indexes, must answer 409, never 500.
	status, payload = postJSON(t, app, "/api/auth/register", body)
	if status != fiber.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409: %v", status, payload)
	}
	if ok, _ := payload["success"].(bool); ok {
		t.Error("duplicate register reported success")
	}
}

func TestRegisterValidation(t *testing.T) {
	app := authApp(t)

	status, _ := postJSON(t, app, "/api/auth/register", `{"username":"dev","email":"dev@example.com","password":"short"}`)
	if status != fiber.StatusBadRequest {
		t.Errorf("short password status = %d, want 400", status)
	}
	status, _ = postJSON(t, app, "/api/auth/register", `{"username":"","email":"","password":"supersecret"}`)
	if status != fiber.StatusBadRequest {
		t.Errorf("missing fields status = %d, want 400", status)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app := authApp(t)
	if status, _ := postJSON(t, app, "/api/auth/register", `{"username":"dev","email":"dev@example.com","password":"supersecret"}`); status != fiber.StatusCreated {
		t.Fatalf("register status = %d, want 201", status)
	}

	status, _ := postJSON(t, app, "/api/auth/login", `{"email":"dev@example.com","password":"wrong-password"}`)
	if status != fiber.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", status)
	}
}
