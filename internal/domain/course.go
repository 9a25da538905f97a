package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// CoursePurpose describes what the learner is preparing for.
type CoursePurpose string

// Supported course purposes.
const (
	PurposeExam              CoursePurpose = "exam"
	PurposeJobInterview      CoursePurpose = "job_interview"
	PurposePractice          CoursePurpose = "practice"
	PurposeCodingPreparation CoursePurpose = "coding_preparation"
	PurposeOther             CoursePurpose = "other"
)

// IsValid reports whether p is a supported purpose.
func (p CoursePurpose) IsValid() bool {
	switch p {
	case PurposeExam, PurposeJobInterview, PurposePractice, PurposeCodingPreparation, PurposeOther:
		return true
	default:
		return false
	}
}

// Difficulty is the target level of a course and of individual questions.
type Difficulty string

// Supported difficulty levels.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// IsValid reports whether d is a supported difficulty.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert:
		return true
	default:
		return false
	}
}

// CourseStatus is the publication state of a course.
type CourseStatus string

// Course statuses. A course is created as a draft and becomes published only
// when its generation job completes.
const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
)

// MaxCourseTitleLength bounds the course name accepted from callers.
const MaxCourseTitleLength = 200

// Validation errors for Course.
var (
	ErrEmptyCourseID       = fmt.Errorf("%w: course ID cannot be empty", ErrValidation)
	ErrEmptyCourseUserID   = fmt.Errorf("%w: course user ID cannot be empty", ErrValidation)
	ErrEmptyCourseTitle    = fmt.Errorf("%w: course title cannot be empty", ErrValidation)
	ErrCourseTitleTooLong  = fmt.Errorf("%w: course title is too long", ErrValidation)
	ErrInvalidPurpose      = fmt.Errorf("%w: invalid course purpose", ErrValidation)
	ErrInvalidDifficulty   = fmt.Errorf("%w: invalid difficulty", ErrValidation)
	ErrInvalidCourseStatus = fmt.Errorf("%w: invalid course status", ErrValidation)
	ErrJobAlreadyAttached  = fmt.Errorf("%w: course already has a generation job", ErrInvalidTransition)
)

// Course is the parent record of everything a generation run produces.
type Course struct {
	ID              uuid.UUID     `json:"id"`
	UserID          uuid.UUID     `json:"user_id"`
	Title           string        `json:"title"`
	Purpose         CoursePurpose `json:"purpose"`
	Difficulty      Difficulty    `json:"difficulty"`
	Status          CourseStatus  `json:"status"`
	GenerationJobID *uuid.UUID    `json:"generation_job_id,omitempty"`
	Summary         string        `json:"summary"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NewCourse creates a draft course for the given user.
func NewCourse(userID uuid.UUID, title string, purpose CoursePurpose, difficulty Difficulty) (*Course, error) {
	now := time.Now().UTC()
	title = strings.TrimSpace(title)
	course := &Course{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      title,
		Purpose:    purpose,
		Difficulty: difficulty,
		Status:     CourseStatusDraft,
		Summary:    courseSummary(title, purpose, difficulty),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := course.Validate(); err != nil {
		return nil, err
	}

	return course, nil
}

// Validate checks that the course fields are well formed.
func (c *Course) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCourseID
	}
	if c.UserID == uuid.Nil {
		return ErrEmptyCourseUserID
	}
	if strings.TrimSpace(c.Title) == "" {
		return ErrEmptyCourseTitle
	}
	if utf8.RuneCountInString(c.Title) > MaxCourseTitleLength {
		return ErrCourseTitleTooLong
	}
	if !c.Purpose.IsValid() {
		return ErrInvalidPurpose
	}
	if !c.Difficulty.IsValid() {
		return ErrInvalidDifficulty
	}
	if c.Status != CourseStatusDraft && c.Status != CourseStatusPublished {
		return ErrInvalidCourseStatus
	}
	return nil
}

// AttachJob links the course to its generation job. The link is written once;
// re-attaching the same job is a no-op and any other job is rejected.
func (c *Course) AttachJob(jobID uuid.UUID) error {
	if c.GenerationJobID != nil {
		if *c.GenerationJobID == jobID {
			return nil
		}
		return ErrJobAlreadyAttached
	}
	c.GenerationJobID = &jobID
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Publish moves a draft course to published. It reports whether the status
// changed, so publishing twice has no further effect.
func (c *Course) Publish() bool {
	if c.Status == CourseStatusPublished {
		return false
	}
	c.Status = CourseStatusPublished
	c.UpdatedAt = time.Now().UTC()
	return true
}

// IsPublished reports whether the course has been published.
func (c *Course) IsPublished() bool {
	return c.Status == CourseStatusPublished
}

func courseSummary(title string, purpose CoursePurpose, difficulty Difficulty) string {
	return fmt.Sprintf("A %s course on %s, prepared for %s.",
		difficulty, title, strings.ReplaceAll(string(purpose), "_", " "))
}
