package services

import (
	"testing"

	"github.com/GabrielGB-web/academiadetreinamento/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogFixture() ([]models.Course, []models.Module, []models.Lesson) {
	courses := []models.Course{
		{Model: gormModel(1), Title: "Safety Basics", Difficulty: "beginner", Category: "safety"},
	}
	modules := []models.Module{
		{Model: gormModel(10), CourseID: 1, Title: "Intro", OrderIndex: 0},
		{Model: gormModel(11), CourseID: 1, Title: "Practice", OrderIndex: 1},
	}
	lessons := []models.Lesson{
		{Model: gormModel(100), ModuleID: 10, Title: "Welcome", Duration: "10:30", OrderIndex: 0},
		{Model: gormModel(101), ModuleID: 10, Title: "Gear", Duration: "5:45", OrderIndex: 1},
		{Model: gormModel(102), ModuleID: 10, Title: "Rules", Duration: "0:00", OrderIndex: 2},
		{Model: gormModel(103), ModuleID: 11, Title: "Drill A", Duration: "12:00", OrderIndex: 0},
		{Model: gormModel(104), ModuleID: 11, Title: "Drill B", Duration: "8:15", OrderIndex: 1},
		{Model: gormModel(105), ModuleID: 11, Title: "Review", Duration: "3:45", OrderIndex: 2},
	}
	return courses, modules, lessons
}

func TestBuildCourseViewsProgressPercent(t *testing.T) {
	courses, modules, lessons := catalogFixture()
	progress := []models.LessonProgress{
		{UserID: 7, LessonID: 100, Completed: true},
		{UserID: 7, LessonID: 101, Completed: true},
		{UserID: 7, LessonID: 103, Completed: true},
	}

	views := BuildCourseViews(courses, modules, lessons, nil, progress)
	require.Len(t, views, 1)

	assert.Equal(t, 50, views[0].Progress)
	assert.Equal(t, 2, views[0].TotalModules)
	assert.True(t, views[0].Modules[0].Lessons[0].Completed)
	assert.False(t, views[0].Modules[0].Lessons[2].Completed)
}

func TestBuildCourseViewsDurationAggregation(t *testing.T) {
	courses := []models.Course{{Model: gormModel(1), Title: "Short"}}
	modules := []models.Module{{Model: gormModel(10), CourseID: 1, Title: "Only"}}
	lessons := []models.Lesson{
		{Model: gormModel(100), ModuleID: 10, Duration: "10:30"},
		{Model: gormModel(101), ModuleID: 10, Duration: "5:45"},
		{Model: gormModel(102), ModuleID: 10, Duration: "0:00"},
	}

	views := BuildCourseViews(courses, modules, lessons, nil, nil)
	require.Len(t, views, 1)
	assert.Equal(t, "16min", views[0].TotalDuration)
}

func TestBuildCourseViewsEmptyCourse(t *testing.T) {
	courses := []models.Course{{Model: gormModel(1), Title: "Placeholder"}}

	views := BuildCourseViews(courses, nil, nil, nil, nil)
	require.Len(t, views, 1)

	assert.Equal(t, 0, views[0].Progress)
	assert.Equal(t, 0, views[0].TotalModules)
	assert.Equal(t, "0min", views[0].TotalDuration)
}

func TestBuildCourseViewsQuizMarker(t *testing.T) {
	courses, modules, lessons := catalogFixture()
	quizLessons := map[uint]bool{101: true, 105: true}

	views := BuildCourseViews(courses, modules, lessons, quizLessons, nil)
	require.Len(t, views, 1)

	assert.False(t, views[0].Modules[0].Lessons[0].HasQuiz)
	assert.True(t, views[0].Modules[0].Lessons[1].HasQuiz)
	assert.True(t, views[0].Modules[1].Lessons[2].HasQuiz)
}

func TestBuildCourseViewsAnonymous(t *testing.T) {
	courses, modules, lessons := catalogFixture()

	views := BuildCourseViews(courses, modules, lessons, nil, nil)
	require.Len(t, views, 1)

	assert.Equal(t, 0, views[0].Progress)
	for _, m := range views[0].Modules {
		for _, l := range m.Lessons {
			assert.False(t, l.Completed)
		}
	}
}

func TestBuildCourseViewsIgnoresMalformedDurations(t *testing.T) {
	courses := []models.Course{{Model: gormModel(1)}}
	modules := []models.Module{{Model: gormModel(10), CourseID: 1}}
	lessons := []models.Lesson{
		{Model: gormModel(100), ModuleID: 10, Duration: "not a clock"},
		{Model: gormModel(101), ModuleID: 10, Duration: "15:00"},
	}

	views := BuildCourseViews(courses, modules, lessons, nil, nil)
	require.Len(t, views, 1)
	assert.Equal(t, "15min", views[0].TotalDuration)
}
