package store

import (
	"context"
	"fmt"
	"math"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the query builders.
const (
	tableCourses     = "courses"
	tableChunks      = "chunks"
	tableQuizzes     = "quizzes"
	tableResults     = "quiz_results"
	tableProgress    = "enrollment_progress"
	tableLLMRequests = "llm_requests"
)

func stringCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Size: 255}
}

func textCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Size: math.MaxInt32, Default: ""}
}

func intCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt, Default: 0}
}

func boolCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeBool, Default: false}
}

func floatCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeFloat64, Default: 0}
}

func timeCol(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeTime}
}

var (
	coursesColumns = []*schema.Column{
		stringCol("id"),
		textCol("title"),
		timeCol("created_at"),
	}
	coursesTable = &schema.Table{
		Name:       tableCourses,
		Columns:    coursesColumns,
		PrimaryKey: []*schema.Column{coursesColumns[0]},
	}

	chunksColumns = []*schema.Column{
		stringCol("course_id"),
		intCol("idx"),
		textCol("text"),
		intCol("start_offset"),
		intCol("end_offset"),
	}
	chunksTable = &schema.Table{
		Name:       tableChunks,
		Columns:    chunksColumns,
		PrimaryKey: []*schema.Column{chunksColumns[0], chunksColumns[1]},
	}

	quizzesColumns = []*schema.Column{
		stringCol("id"),
		stringCol("course_id"),
		stringCol("student_id"),
		textCol("title"),
		stringCol("difficulty"),
		textCol("questions"),
		boolCol("fallback"),
		textCol("fallback_reason"),
		stringCol("model"),
		timeCol("created_at"),
	}
	quizzesTable = &schema.Table{
		Name:       tableQuizzes,
		Columns:    quizzesColumns,
		PrimaryKey: []*schema.Column{quizzesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quizzes_student_course", Columns: []*schema.Column{quizzesColumns[2], quizzesColumns[1]}},
		},
	}

	resultsColumns = []*schema.Column{
		stringCol("id"),
		stringCol("quiz_id"),
		stringCol("student_id"),
		stringCol("course_id"),
		stringCol("difficulty"),
		intCol("total_questions"),
		intCol("correct_count"),
		floatCol("score_percent"),
		boolCol("passed"),
		boolCol("course_validated"),
		stringCol("next_difficulty"),
		textCol("feedback"),
		textCol("details"),
		timeCol("created_at"),
	}
	resultsTable = &schema.Table{
		Name:       tableResults,
		Columns:    resultsColumns,
		PrimaryKey: []*schema.Column{resultsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quiz_results_quiz", Unique: true, Columns: []*schema.Column{resultsColumns[1]}},
			{Name: "quiz_results_student_course", Columns: []*schema.Column{resultsColumns[2], resultsColumns[3]}},
		},
	}

	progressColumns = []*schema.Column{
		stringCol("student_id"),
		stringCol("course_id"),
		boolCol("completed"),
		intCol("progress_percent"),
		timeCol("updated_at"),
	}
	progressTable = &schema.Table{
		Name:       tableProgress,
		Columns:    progressColumns,
		PrimaryKey: []*schema.Column{progressColumns[0], progressColumns[1]},
	}

	llmRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		stringCol("provider"),
		stringCol("model"),
		stringCol("purpose"),
		intCol("input_tokens"),
		intCol("output_tokens"),
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		boolCol("success"),
		textCol("error_message"),
		textCol("request_body"),
		textCol("response_body"),
		timeCol("created_at"),
	}
	llmRequestsTable = &schema.Table{
		Name:       tableLLMRequests,
		Columns:    llmRequestsColumns,
		PrimaryKey: []*schema.Column{llmRequestsColumns[0]},
	}

	tables = []*schema.Table{
		coursesTable,
		chunksTable,
		quizzesTable,
		resultsTable,
		progressTable,
		llmRequestsTable,
	}
)

// migrate creates or upgrades every table.
func (s *Store) migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
