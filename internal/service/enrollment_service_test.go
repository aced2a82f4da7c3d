package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kgarud95/LearningX-version-10/internal/models"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
)

func TestEnrollSuccess(t *testing.T) {
	enrollments := newFakeEnrollmentStore()
	svc := NewEnrollmentService(enrollments, newFakeCourseStore(courseFixture()), zap.NewNop())

	enrollment, err := svc.Enroll(context.Background(), "student-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.Equal(t, "student-1", enrollment.UserID)
	assert.Len(t, enrollments.enrollments, 1)
}

func TestEnrollCourseNotFound(t *testing.T) {
	svc := NewEnrollmentService(newFakeEnrollmentStore(), newFakeCourseStore(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), "student-1", "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestEnrollDuplicateConflict(t *testing.T) {
	enrollments := newFakeEnrollmentStore()
	enrollments.enroll("student-1", "c1")
	svc := NewEnrollmentService(enrollments, newFakeCourseStore(courseFixture()), zap.NewNop())

	_, err := svc.Enroll(context.Background(), "student-1", "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
}

func TestListOwnEmpty(t *testing.T) {
	svc := NewEnrollmentService(newFakeEnrollmentStore(), newFakeCourseStore(), zap.NewNop())

	details, err := svc.ListOwn(context.Background(), "student-1")
	require.NoError(t, err)
	assert.NotNil(t, details)
	assert.Empty(t, details)
}
