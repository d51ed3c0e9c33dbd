package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	. "taskapp/pkg/test"

	"taskapp/internal/adapter/database/sqlite"
	"taskapp/internal/adapter/database/sqlite/repository"
	"taskapp/internal/core/domain"
	"taskapp/internal/core/model/request"
	"taskapp/internal/core/port"
)

type TaskRepositoryTestSuite struct {
	suite.Suite
	DB   *sqlite.DB
	Repo port.TaskRepository
}

func (s *TaskRepositoryTestSuite) SetupTest() {
	s.DB = InitTestDB()
	s.Repo = repository.NewTaskRepository(s.DB)
}

func (s *TaskRepositoryTestSuite) TearDownTest() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TaskRepositoryTestSuite))
}

func (s *TaskRepositoryTestSuite) createTask(title, description string) domain.Task {
	task, err := s.Repo.Create(context.Background(), request.CreateTaskRequest{
		Title:       StrPtr(title),
		Description: StrPtr(description),
	})

	Expect(err).To(BeNil())

	return task
}

func (s *TaskRepositoryTestSuite) TestRepository_Create_PersistsAllFields() {
	task := s.createTask("Write report", "quarterly numbers")

	Expect(task.ID).NotTo(Equal(uuid.Nil))
	Expect(task.Title).To(Equal("Write report"))
	Expect(task.Description).To(Equal("quarterly numbers"))
	Expect(task.CompletedAt).To(BeNil())

	found, err := s.Repo.FindByID(context.Background(), task.ID)

	Expect(err).To(BeNil())
	Expect(found).NotTo(BeNil())
	Expect(found.Title).To(Equal("Write report"))
	Expect(found.CreatedAt.Equal(task.CreatedAt)).To(BeTrue())
}

func (s *TaskRepositoryTestSuite) TestRepository_FindAll_OrdersNewestFirst() {
	first := s.createTask("first", "created earliest")
	second := s.createTask("second", "created in between")
	third := s.createTask("third", "created last")

	tasks, err := s.Repo.FindAll(context.Background(), domain.TaskFilters{Page: 1, Limit: 10})

	Expect(err).To(BeNil())
	Expect(tasks).To(HaveLen(3))
	Expect(tasks[0].ID).To(Equal(third.ID))
	Expect(tasks[1].ID).To(Equal(second.ID))
	Expect(tasks[2].ID).To(Equal(first.ID))
}

func (s *TaskRepositoryTestSuite) TestRepository_FindAll_AppliesOffset() {
	for i := 1; i <= 5; i++ {
		s.createTask(fmt.Sprintf("Task %d", i), "numbered")
	}

	tasks, err := s.Repo.FindAll(context.Background(), domain.TaskFilters{Page: 2, Limit: 2})

	Expect(err).To(BeNil())
	Expect(tasks).To(HaveLen(2))
	Expect(tasks[0].Title).To(Equal("Task 3"))
	Expect(tasks[1].Title).To(Equal("Task 2"))
}

func (s *TaskRepositoryTestSuite) TestRepository_FindAll_SearchIgnoresCase() {
	s.createTask("Buy Milk", "whole fat")
	s.createTask("Call plumber", "kitchen sink")

	tasks, err := s.Repo.FindAll(context.Background(), domain.TaskFilters{
		Search: StrPtr("MILK"),
		Page:   1,
		Limit:  10,
	})

	Expect(err).To(BeNil())
	Expect(tasks).To(HaveLen(1))
	Expect(tasks[0].Title).To(Equal("Buy Milk"))
}

func (s *TaskRepositoryTestSuite) TestRepository_Count_SharesFilters() {
	s.createTask("Buy milk", "today")
	s.createTask("Buy bread", "tomorrow")
	s.createTask("Walk the dog", "tonight")

	total, err := s.Repo.Count(context.Background(), domain.TaskFilters{Search: StrPtr("buy")})

	Expect(err).To(BeNil())
	Expect(total).To(Equal(int64(2)))
}

func (s *TaskRepositoryTestSuite) TestRepository_FindByID_ReturnsNilWhenAbsent() {
	task, err := s.Repo.FindByID(context.Background(), uuid.New())

	Expect(err).To(BeNil())
	Expect(task).To(BeNil())
}

func (s *TaskRepositoryTestSuite) TestRepository_Update_OnlyTouchesProvidedFields() {
	created := s.createTask("Keep me", "replace me")

	updated, err := s.Repo.Update(context.Background(), created.ID, request.UpdateTaskRequest{
		Description: StrPtr("replaced"),
	})

	Expect(err).To(BeNil())
	Expect(updated.Title).To(Equal("Keep me"))
	Expect(updated.Description).To(Equal("replaced"))
	Expect(updated.UpdatedAt.After(created.UpdatedAt)).To(BeTrue())
}

func (s *TaskRepositoryTestSuite) TestRepository_Update_FailsWhenRowMissing() {
	_, err := s.Repo.Update(context.Background(), uuid.New(), request.UpdateTaskRequest{
		Title: StrPtr("nobody home"),
	})

	Expect(err).NotTo(BeNil())
}

func (s *TaskRepositoryTestSuite) TestRepository_Delete_RemovesRow() {
	created := s.createTask("Short lived", "gone soon")

	err := s.Repo.Delete(context.Background(), created.ID)
	Expect(err).To(BeNil())

	found, err := s.Repo.FindByID(context.Background(), created.ID)
	Expect(err).To(BeNil())
	Expect(found).To(BeNil())
}

func (s *TaskRepositoryTestSuite) TestRepository_Delete_FailsWhenRowMissing() {
	err := s.Repo.Delete(context.Background(), uuid.New())

	Expect(err).NotTo(BeNil())
}

func (s *TaskRepositoryTestSuite) TestRepository_ToggleComplete_WritesNegationOfGivenValue() {
	created := s.createTask("Toggle", "flip flop")

	completed, err := s.Repo.ToggleComplete(context.Background(), created.ID, nil)

	Expect(err).To(BeNil())
	Expect(completed.IsCompleted()).To(BeTrue())

	reopened, err := s.Repo.ToggleComplete(context.Background(), created.ID, completed.CompletedAt)

	Expect(err).To(BeNil())
	Expect(reopened.IsCompleted()).To(BeFalse())
}

func (s *TaskRepositoryTestSuite) TestRepository_ToggleComplete_LastWriteWins() {
	created := s.createTask("Raced", "two readers, one row")

	// both callers read completed_at as nil before either writes
	stale := created.CompletedAt

	first, err := s.Repo.ToggleComplete(context.Background(), created.ID, stale)
	Expect(err).To(BeNil())
	Expect(first.CompletedAt).NotTo(BeNil())

	second, err := s.Repo.ToggleComplete(context.Background(), created.ID, stale)
	Expect(err).To(BeNil())
	Expect(second.CompletedAt).NotTo(BeNil())
	Expect(second.CompletedAt.Equal(*first.CompletedAt)).To(BeFalse())
	Expect(second.UpdatedAt.After(first.UpdatedAt)).To(BeTrue())
}
