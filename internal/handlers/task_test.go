package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskboard/taskboard-api/internal/models"
	"github.com/taskboard/taskboard-api/internal/realtime"
	"github.com/taskboard/taskboard-api/internal/repository"
	"github.com/taskboard/taskboard-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(&models.User{}, &models.Task{}, &models.Activity{})
	suite.Require().NoError(err)

	taskService := services.NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewUserRepository(suite.db),
		realtime.NewHub(),
	)
	suite.handler = NewTaskHandler(taskService)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(name, email string) *models.User {
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, creatorID uint64) *models.Task {
	task := &models.Task{
		Title:     title,
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
		CreatorID: creatorID,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)

	return c, w
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	user := suite.createTestUser("Alice", "alice@example.com")

	body, _ := json.Marshal(map[string]any{
		"title":       "Ship release",
		"description": "Cut the 2.0 tag",
	})
	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var resp map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "Ship release", resp["title"])
	assert.Equal(suite.T(), "todo", resp["status"])
	assert.Equal(suite.T(), "medium", resp["priority"])

	creator, ok := resp["creator"].(map[string]any)
	suite.Require().True(ok)
	assert.Equal(suite.T(), "Alice", creator["name"])
}

func (suite *TaskHandlerTestSuite) TestCreateTask_MissingTitle() {
	user := suite.createTestUser("Alice", "alice@example.com")

	body, _ := json.Marshal(map[string]any{"description": "no title"})
	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_ReservedTitle() {
	user := suite.createTestUser("Alice", "alice@example.com")

	body, _ := json.Marshal(map[string]any{"title": "In Progress"})
	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)

	var resp map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "VALIDATION_ERROR", resp["code"])
}

func (suite *TaskHandlerTestSuite) TestCreateTask_DuplicateTitle() {
	user := suite.createTestUser("Alice", "alice@example.com")
	suite.createTestTask("Ship release", user.ID)

	body, _ := json.Marshal(map[string]any{"title": "Ship release"})
	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var resp map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "DUPLICATE_TITLE", resp["code"])
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_StatusChange() {
	user := suite.createTestUser("Alice", "alice@example.com")
	suite.createTestTask("Ship release", user.ID)

	body, _ := json.Marshal(map[string]any{"status": "in_progress"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Task    map[string]any   `json:"task"`
		Changes []map[string]any `json:"changes"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "in_progress", resp.Task["status"])
	suite.Require().Len(resp.Changes, 1)
	assert.Equal(suite.T(), "status", resp.Changes[0]["field"])
	assert.Equal(suite.T(), "todo", resp.Changes[0]["old"])
	assert.Equal(suite.T(), "in_progress", resp.Changes[0]["new"])
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ClearAssigneeWithNull() {
	user := suite.createTestUser("Alice", "alice@example.com")
	task := suite.createTestTask("Ship release", user.ID)
	suite.Require().NoError(suite.db.Model(task).Update("assignee_id", user.ID).Error)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", []byte(`{"assignee_id": null}`), user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, task.ID).Error)
	assert.Nil(suite.T(), reloaded.AssigneeID)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ClearDueDateWithNull() {
	user := suite.createTestUser("Alice", "alice@example.com")
	task := suite.createTestTask("Ship release", user.ID)
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	suite.Require().NoError(suite.db.Model(task).Update("due_date", due).Error)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", []byte(`{"due_date": null}`), user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, task.ID).Error)
	assert.Nil(suite.T(), reloaded.DueDate)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NotParticipant() {
	creator := suite.createTestUser("Alice", "alice@example.com")
	stranger := suite.createTestUser("Mallory", "mallory@example.com")
	suite.createTestTask("Ship release", creator.ID)

	body, _ := json.Marshal(map[string]any{"status": "done"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, stranger.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_NotFound() {
	user := suite.createTestUser("Alice", "alice@example.com")

	body, _ := json.Marshal(map[string]any{"status": "done"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/999", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "999"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidID() {
	user := suite.createTestUser("Alice", "alice@example.com")

	body, _ := json.Marshal(map[string]any{"status": "done"})
	c, w := suite.createAuthContext("PATCH", "/api/tasks/abc", body, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	user := suite.createTestUser("Alice", "alice@example.com")
	task := suite.createTestTask("Ship release", user.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_AssigneeForbidden() {
	creator := suite.createTestUser("Alice", "alice@example.com")
	assignee := suite.createTestUser("Bob", "bob@example.com")
	task := suite.createTestTask("Ship release", creator.ID)
	suite.Require().NoError(suite.db.Model(task).Update("assignee_id", assignee.ID).Error)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, assignee.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestSmartAssign_Success() {
	user := suite.createTestUser("Alice", "alice@example.com")
	suite.createTestTask("Ship release", user.ID)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1/smart-assign", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.SmartAssign(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assignee, ok := resp["assignee"].(map[string]any)
	suite.Require().True(ok)
	assert.Equal(suite.T(), "Alice", assignee["name"])
}

func (suite *TaskHandlerTestSuite) TestSmartAssign_NoEligibleUser() {
	user := suite.createTestUser("Alice", "alice@example.com")
	suite.createTestTask("Ship release", user.ID)
	suite.Require().NoError(suite.db.Delete(&models.User{}, user.ID).Error)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1/smart-assign", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	suite.handler.SmartAssign(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var resp map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "NO_ELIGIBLE_USER", resp["code"])
}

func (suite *TaskHandlerTestSuite) TestListTasks_ResolvesIdentities() {
	creator := suite.createTestUser("Alice", "alice@example.com")
	assignee := suite.createTestUser("Bob", "bob@example.com")
	task := suite.createTestTask("Ship release", creator.ID)
	suite.Require().NoError(suite.db.Model(task).Update("assignee_id", assignee.ID).Error)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, creator.ID)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Tasks []map[string]any `json:"tasks"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Tasks, 1)

	creatorDTO := resp.Tasks[0]["creator"].(map[string]any)
	assigneeDTO := resp.Tasks[0]["assignee"].(map[string]any)
	assert.Equal(suite.T(), "Alice", creatorDTO["name"])
	assert.Equal(suite.T(), "Bob", assigneeDTO["name"])
}

func (suite *TaskHandlerTestSuite) TestListTasks_ExcludesUnrelated() {
	creator := suite.createTestUser("Alice", "alice@example.com")
	other := suite.createTestUser("Bob", "bob@example.com")
	suite.createTestTask("Ship release", creator.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, other.ID)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var resp struct {
		Tasks []map[string]any `json:"tasks"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(suite.T(), resp.Tasks)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
