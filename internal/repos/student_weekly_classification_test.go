package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/wellbeing-worker/internal/repos"
	"github.com/brightpath/wellbeing-worker/internal/repos/testutil"
	"github.com/brightpath/wellbeing-worker/internal/types"
)

func labelPtr(l types.Label) *types.Label { return &l }

func TestWeeklyUpsertIsIdempotentPerWeek(t *testing.T) {
	db := testutil.DB(t)
	repo := repos.NewStudentWeeklyClassificationRepo(db, testutil.Logger(t))
	ctx := context.Background()

	student := uuid.New()
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 7)

	first, err := repo.Upsert(ctx, nil, &types.StudentWeeklyClassification{
		StudentID:              student,
		WeekStart:              weekStart,
		WeekEnd:                weekEnd,
		DominantClassification: labelPtr(types.LabelThriving),
		IsFlagged:              false,
	})
	if err != nil {
		t.Fatalf("first Upsert returned error: %v", err)
	}

	_, err = repo.Upsert(ctx, nil, &types.StudentWeeklyClassification{
		StudentID:              student,
		WeekStart:              weekStart,
		WeekEnd:                weekEnd,
		DominantClassification: labelPtr(types.LabelStruggling),
		IsFlagged:              true,
	})
	if err != nil {
		t.Fatalf("second Upsert returned error: %v", err)
	}

	rows, err := repo.ListForStudent(ctx, nil, student, 10)
	if err != nil {
		t.Fatalf("ListForStudent returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rerunning a week left %d rows, want 1", len(rows))
	}
	if rows[0].DominantClassification == nil || *rows[0].DominantClassification != types.LabelStruggling {
		t.Fatalf("dominant = %v, want Struggling after rerun", rows[0].DominantClassification)
	}
	if !rows[0].IsFlagged {
		t.Fatal("rerun should have updated the flag")
	}

	got, err := repo.GetByStudentAndWeek(ctx, nil, student, weekStart)
	if err != nil {
		t.Fatalf("GetByStudentAndWeek returned error: %v", err)
	}
	if got == nil || got.WeeklyClassificationID != first.WeeklyClassificationID {
		t.Fatalf("rerun should update the existing row, got %+v", got)
	}
}

func TestWeeklySeparateWeeksSeparateRows(t *testing.T) {
	db := testutil.DB(t)
	repo := repos.NewStudentWeeklyClassificationRepo(db, testutil.Logger(t))
	ctx := context.Background()

	student := uuid.New()
	week1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	week2 := week1.AddDate(0, 0, 7)

	for _, ws := range []time.Time{week1, week2} {
		if _, err := repo.Upsert(ctx, nil, &types.StudentWeeklyClassification{
			StudentID:              student,
			WeekStart:              ws,
			WeekEnd:                ws.AddDate(0, 0, 7),
			DominantClassification: labelPtr(types.LabelThriving),
		}); err != nil {
			t.Fatalf("Upsert returned error: %v", err)
		}
	}

	rows, err := repo.ListForStudent(ctx, nil, student, 10)
	if err != nil {
		t.Fatalf("ListForStudent returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 distinct weeks", len(rows))
	}
	if !rows[0].WeekStart.After(rows[1].WeekStart) {
		t.Fatal("ListForStudent should return most recent week first")
	}

	latest, err := repo.GetLatestForStudent(ctx, nil, student)
	if err != nil {
		t.Fatalf("GetLatestForStudent returned error: %v", err)
	}
	if latest == nil || !latest.WeekStart.Equal(week2) {
		t.Fatalf("latest week = %+v, want week starting %s", latest, week2)
	}
}

func TestWeeklyNilDominantPersists(t *testing.T) {
	db := testutil.DB(t)
	repo := repos.NewStudentWeeklyClassificationRepo(db, testutil.Logger(t))
	ctx := context.Background()

	student := uuid.New()
	weekStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	created, err := repo.Upsert(ctx, nil, &types.StudentWeeklyClassification{
		StudentID: student,
		WeekStart: weekStart,
		WeekEnd:   weekStart.AddDate(0, 0, 7),
	})
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, created.WeeklyClassificationID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil for existing row")
	}
	if got.DominantClassification != nil {
		t.Fatalf("dominant = %v, want nil", got.DominantClassification)
	}
}
