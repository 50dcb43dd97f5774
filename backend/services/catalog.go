package services

import (
	"errors"
	"math"

	"github.com/GabrielGB-web/academiadetreinamento/backend/models"

	"gorm.io/gorm"
)

// View types returned to the presentation layer. Lessons carry a quiz-presence
// marker only, never question content.

type LessonView struct {
	ID          uint   `json:"id"`
	ModuleID    uint   `json:"module_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
	Duration    string `json:"duration"`
	OrderIndex  int    `json:"order_index"`
	Completed   bool   `json:"completed"`
	HasQuiz     bool   `json:"has_quiz"`
}

type ModuleView struct {
	ID         uint         `json:"id"`
	CourseID   uint         `json:"course_id"`
	Title      string       `json:"title"`
	OrderIndex int          `json:"order_index"`
	Lessons    []LessonView `json:"lessons"`
}

type CourseView struct {
	ID            uint         `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Thumbnail     string       `json:"thumbnail,omitempty"`
	Difficulty    string       `json:"difficulty"`
	Category      string       `json:"category"`
	TotalModules  int          `json:"total_modules"`
	TotalDuration string       `json:"total_duration"`
	Progress      int          `json:"progress"`
	Modules       []ModuleView `json:"modules"`
}

// QuizInfo is the lightweight quiz marker attached to a lesson detail. It
// deliberately omits questions.
type QuizInfo struct {
	ID           uint   `json:"id"`
	LessonID     uint   `json:"lesson_id"`
	Title        string `json:"title"`
	PassingScore int    `json:"passing_score"`
	PointsReward int    `json:"points_reward"`
}

type LessonDetail struct {
	LessonView
	CourseID    uint      `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	Quiz        *QuizInfo `json:"quiz,omitempty"`
}

// BuildCourseViews joins flat entity collections plus the caller's progress
// records into denormalized course trees with derived fields. It never
// mutates its inputs; callers can feed it straight from the store or from
// fixtures in tests.
func BuildCourseViews(
	courses []models.Course,
	modules []models.Module,
	lessons []models.Lesson,
	quizLessonIDs map[uint]bool,
	progress []models.LessonProgress,
) []CourseView {
	completed := make(map[uint]bool, len(progress))
	for _, p := range progress {
		if p.Completed {
			completed[p.LessonID] = true
		}
	}

	lessonsByModule := make(map[uint][]models.Lesson, len(modules))
	for _, l := range lessons {
		lessonsByModule[l.ModuleID] = append(lessonsByModule[l.ModuleID], l)
	}
	modulesByCourse := make(map[uint][]models.Module, len(courses))
	for _, m := range modules {
		modulesByCourse[m.CourseID] = append(modulesByCourse[m.CourseID], m)
	}

	views := make([]CourseView, 0, len(courses))
	for _, course := range courses {
		var (
			moduleViews      []ModuleView
			totalLessons     int
			completedLessons int
			totalMinutes     float64
		)

		for _, module := range modulesByCourse[course.ID] {
			mv := ModuleView{
				ID:         module.ID,
				CourseID:   course.ID,
				Title:      module.Title,
				OrderIndex: module.OrderIndex,
				Lessons:    []LessonView{},
			}

			for _, lesson := range lessonsByModule[module.ID] {
				done := completed[lesson.ID]
				mv.Lessons = append(mv.Lessons, LessonView{
					ID:          lesson.ID,
					ModuleID:    module.ID,
					Title:       lesson.Title,
					Description: lesson.Description,
					VideoURL:    lesson.VideoURL,
					Duration:    lesson.Duration,
					OrderIndex:  lesson.OrderIndex,
					Completed:   done,
					HasQuiz:     quizLessonIDs[lesson.ID],
				})

				totalLessons++
				if done {
					completedLessons++
				}
				totalMinutes += ParseClockMinutes(lesson.Duration)
			}

			moduleViews = append(moduleViews, mv)
		}

		percent := 0
		if totalLessons > 0 {
			percent = int(math.Round(float64(completedLessons) / float64(totalLessons) * 100))
		}

		views = append(views, CourseView{
			ID:            course.ID,
			Title:         course.Title,
			Description:   course.Description,
			Thumbnail:     course.Thumbnail,
			Difficulty:    course.Difficulty,
			Category:      course.Category,
			TotalModules:  len(moduleViews),
			TotalDuration: FormatTotalMinutes(totalMinutes),
			Progress:      percent,
			Modules:       moduleViews,
		})
	}

	return views
}

// CatalogService loads the normalized entities and delegates to
// BuildCourseViews. userID == 0 means anonymous: the tree is built with an
// empty progress set.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

func (s *CatalogService) CourseViews(userID uint) ([]CourseView, error) {
	var courses []models.Course
	if err := s.DB.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, &TransientError{Err: err}
	}

	var modules []models.Module
	if err := s.DB.Order("order_index ASC").Find(&modules).Error; err != nil {
		return nil, &TransientError{Err: err}
	}

	var lessons []models.Lesson
	if err := s.DB.Order("order_index ASC").Find(&lessons).Error; err != nil {
		return nil, &TransientError{Err: err}
	}

	var quizLessonIDs []uint
	if err := s.DB.Model(&models.Quiz{}).Pluck("lesson_id", &quizLessonIDs).Error; err != nil {
		return nil, &TransientError{Err: err}
	}
	quizLessons := make(map[uint]bool, len(quizLessonIDs))
	for _, id := range quizLessonIDs {
		quizLessons[id] = true
	}

	var progress []models.LessonProgress
	if userID != 0 {
		if err := s.DB.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
			return nil, &TransientError{Err: err}
		}
	}

	return BuildCourseViews(courses, modules, lessons, quizLessons, progress), nil
}

func (s *CatalogService) CourseView(courseID, userID uint) (*CourseView, error) {
	views, err := s.CourseViews(userID)
	if err != nil {
		return nil, err
	}
	for i := range views {
		if views[i].ID == courseID {
			return &views[i], nil
		}
	}
	return nil, ErrNotFound
}

// LessonDetail resolves a single lesson with its course context, quiz marker
// and the caller's completion state.
func (s *CatalogService) LessonDetail(lessonID, userID uint) (*LessonDetail, error) {
	var lesson models.Lesson
	if err := s.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &TransientError{Err: err}
	}

	var module models.Module
	if err := s.DB.First(&module, lesson.ModuleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &TransientError{Err: err}
	}

	var course models.Course
	if err := s.DB.First(&course, module.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &TransientError{Err: err}
	}

	detail := &LessonDetail{
		LessonView: LessonView{
			ID:          lesson.ID,
			ModuleID:    lesson.ModuleID,
			Title:       lesson.Title,
			Description: lesson.Description,
			VideoURL:    lesson.VideoURL,
			Duration:    lesson.Duration,
			OrderIndex:  lesson.OrderIndex,
		},
		CourseID:    course.ID,
		CourseTitle: course.Title,
	}

	var quiz models.Quiz
	err := s.DB.Where("lesson_id = ?", lessonID).First(&quiz).Error
	switch {
	case err == nil:
		detail.HasQuiz = true
		detail.Quiz = &QuizInfo{
			ID:           quiz.ID,
			LessonID:     quiz.LessonID,
			Title:        quiz.Title,
			PassingScore: quiz.PassingScore,
			PointsReward: quiz.PointsReward,
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// lesson simply has no quiz
	default:
		return nil, &TransientError{Err: err}
	}

	if userID != 0 {
		var p models.LessonProgress
		err := s.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&p).Error
		if err == nil {
			detail.Completed = p.Completed
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &TransientError{Err: err}
		}
	}

	return detail, nil
}
