package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	. "taskapp/pkg/test"

	factory "taskapp/pkg/test/factory"

	"taskapp/internal/adapter/database/sqlite"
	"taskapp/internal/adapter/database/sqlite/repository"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/model/request"
	"taskapp/internal/core/port"
	"taskapp/internal/core/service"
)

type TaskServiceTestSuite struct {
	suite.Suite
	DB       *sqlite.DB
	TaskRepo port.TaskRepository
	Service  *service.TaskService
}

func (s *TaskServiceTestSuite) SetupTest() {
	s.DB = InitTestDB()
	s.TaskRepo = repository.NewTaskRepository(s.DB)
	s.Service = service.NewTaskService(s.TaskRepo)
}

func (s *TaskServiceTestSuite) TearDownTest() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func TestTaskServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TaskServiceTestSuite))
}

func (s *TaskServiceTestSuite) createTask(title, description string) domain.Task {
	task, err := s.Service.CreateTask(context.Background(), factory.NewTask[request.CreateTaskRequest](map[string]any{
		"Title":       StrPtr(title),
		"Description": StrPtr(description),
	}))

	Expect(err).To(BeNil())

	return task
}

func (s *TaskServiceTestSuite) TestService_CreateTask_Success() {
	task := s.createTask("Buy milk", "2 liters")

	Expect(task.ID).NotTo(Equal(uuid.Nil))
	Expect(task.Title).To(Equal("Buy milk"))
	Expect(task.Description).To(Equal("2 liters"))
	Expect(task.CompletedAt).To(BeNil())
	Expect(task.CreatedAt.Equal(task.UpdatedAt)).To(BeTrue())
}

func (s *TaskServiceTestSuite) TestService_ListTasks_Empty() {
	result, err := s.Service.ListTasks(context.Background(), domain.TaskFilters{})

	Expect(err).To(BeNil())
	Expect(result.Data).To(BeEmpty())
	Expect(result.Pagination.Page).To(Equal(1))
	Expect(result.Pagination.Limit).To(Equal(10))
	Expect(result.Pagination.Total).To(Equal(int64(0)))
	Expect(result.Pagination.TotalPages).To(Equal(0))
}

func (s *TaskServiceTestSuite) TestService_ListTasks_DefaultsApplied() {
	for i := 1; i <= 15; i++ {
		s.createTask(fmt.Sprintf("Task %02d", i), "some description")
	}

	result, err := s.Service.ListTasks(context.Background(), domain.TaskFilters{})

	Expect(err).To(BeNil())
	Expect(result.Data).To(HaveLen(10))
	Expect(result.Pagination.Total).To(Equal(int64(15)))
	Expect(result.Pagination.TotalPages).To(Equal(2))
}

func (s *TaskServiceTestSuite) TestService_ListTasks_SecondPage() {
	for i := 1; i <= 25; i++ {
		s.createTask(fmt.Sprintf("Task %02d", i), "some description")
	}

	result, err := s.Service.ListTasks(context.Background(), domain.TaskFilters{Page: 2, Limit: 10})

	Expect(err).To(BeNil())
	Expect(result.Data).To(HaveLen(10))

	// newest first: page 2 holds tasks 15 down to 06
	Expect(result.Data[0].Title).To(Equal("Task 15"))
	Expect(result.Data[9].Title).To(Equal("Task 06"))

	Expect(result.Pagination.Page).To(Equal(2))
	Expect(result.Pagination.Limit).To(Equal(10))
	Expect(result.Pagination.Total).To(Equal(int64(25)))
	Expect(result.Pagination.TotalPages).To(Equal(3))
}

func (s *TaskServiceTestSuite) TestService_ListTasks_CompletedFilter() {
	s.createTask("Task A", "first")
	s.createTask("Task B", "second")
	done := s.createTask("Task C", "third")

	_, err := s.Service.ToggleTaskComplete(context.Background(), done.ID)
	Expect(err).To(BeNil())

	completed, err := s.Service.ListTasks(context.Background(), domain.TaskFilters{Completed: BoolPtr(true)})

	Expect(err).To(BeNil())
	Expect(completed.Data).To(HaveLen(1))
	Expect(completed.Data[0].Title).To(Equal("Task C"))
	Expect(completed.Data[0].CompletedAt).NotTo(BeNil())

	pending, err := s.Service.ListTasks(context.Background(), domain.TaskFilters{Completed: BoolPtr(false)})

	Expect(err).To(BeNil())
	Expect(pending.Data).To(HaveLen(2))

	for _, task := range pending.Data {
		Expect(task.CompletedAt).To(BeNil())
	}
}

func (s *TaskServiceTestSuite) TestService_ListTasks_SearchIsCaseInsensitive() {
	s.createTask("Buy Milk", "from the store")
	s.createTask("Walk the dog", "around the block")
	s.createTask("Clean house", "including the MILKY windows")

	result, err := s.Service.ListTasks(context.Background(), domain.TaskFilters{Search: StrPtr("milk")})

	Expect(err).To(BeNil())
	Expect(result.Data).To(HaveLen(2))
	Expect(result.Pagination.Total).To(Equal(int64(2)))
}

func (s *TaskServiceTestSuite) TestService_ListTasks_SearchMatchesDescription() {
	s.createTask("Groceries", "buy two Liters of milk")
	s.createTask("Laundry", "wash everything")

	result, err := s.Service.ListTasks(context.Background(), domain.TaskFilters{Search: StrPtr("liters")})

	Expect(err).To(BeNil())
	Expect(result.Data).To(HaveLen(1))
	Expect(result.Data[0].Title).To(Equal("Groceries"))
}

func (s *TaskServiceTestSuite) TestService_GetTaskByID_Success() {
	created := s.createTask("Task", "description")

	task, err := s.Service.GetTaskByID(context.Background(), created.ID)

	Expect(err).To(BeNil())
	Expect(task.ID).To(Equal(created.ID))
	Expect(task.Title).To(Equal("Task"))
}

func (s *TaskServiceTestSuite) TestService_GetTaskByID_NotFound() {
	_, err := s.Service.GetTaskByID(context.Background(), uuid.New())

	assert.ErrorIs(s.T(), err, domain.ErrTaskNotFound)
	assert.EqualError(s.T(), err, "Task not found")
}

func (s *TaskServiceTestSuite) TestService_UpdateTask_PartialUpdate() {
	created := s.createTask("Original title", "original description")

	updated, err := s.Service.UpdateTask(context.Background(), created.ID, request.UpdateTaskRequest{
		Description: StrPtr("new"),
	})

	Expect(err).To(BeNil())
	Expect(updated.Title).To(Equal("Original title"))
	Expect(updated.Description).To(Equal("new"))
	Expect(updated.UpdatedAt.After(created.UpdatedAt)).To(BeTrue())
	Expect(updated.CreatedAt.Equal(created.CreatedAt)).To(BeTrue())
}

func (s *TaskServiceTestSuite) TestService_UpdateTask_NotFound() {
	_, err := s.Service.UpdateTask(context.Background(), uuid.New(), request.UpdateTaskRequest{
		Title: StrPtr("whatever"),
	})

	assert.ErrorIs(s.T(), err, domain.ErrTaskNotFound)
}

func (s *TaskServiceTestSuite) TestService_DeleteTask_ThenGetFails() {
	created := s.createTask("Disposable", "gone soon")

	err := s.Service.DeleteTask(context.Background(), created.ID)
	Expect(err).To(BeNil())

	_, err = s.Service.GetTaskByID(context.Background(), created.ID)
	assert.ErrorIs(s.T(), err, domain.ErrTaskNotFound)
}

func (s *TaskServiceTestSuite) TestService_DeleteTask_NotFound() {
	err := s.Service.DeleteTask(context.Background(), uuid.New())

	assert.ErrorIs(s.T(), err, domain.ErrTaskNotFound)
}

func (s *TaskServiceTestSuite) TestService_ToggleTaskComplete_SetsTimestamp() {
	created := s.createTask("Toggle me", "back and forth")

	toggled, err := s.Service.ToggleTaskComplete(context.Background(), created.ID)

	Expect(err).To(BeNil())
	Expect(toggled.CompletedAt).NotTo(BeNil())
	Expect(toggled.CompletedAt.Before(toggled.CreatedAt)).To(BeFalse())
	Expect(toggled.UpdatedAt.After(created.UpdatedAt)).To(BeTrue())
}

func (s *TaskServiceTestSuite) TestService_ToggleTaskComplete_IsAnInvolution() {
	created := s.createTask("Toggle twice", "ends where it started")

	once, err := s.Service.ToggleTaskComplete(context.Background(), created.ID)
	Expect(err).To(BeNil())
	Expect(once.CompletedAt).NotTo(BeNil())

	twice, err := s.Service.ToggleTaskComplete(context.Background(), created.ID)
	Expect(err).To(BeNil())
	Expect(twice.CompletedAt).To(BeNil())
}

func (s *TaskServiceTestSuite) TestService_ToggleTaskComplete_NotFound() {
	_, err := s.Service.ToggleTaskComplete(context.Background(), uuid.New())

	assert.ErrorIs(s.T(), err, domain.ErrTaskNotFound)
}
