package service

import (
	"errors"
	"testing"

	"github.com/habitspark/internal/db"
	"github.com/habitspark/internal/progress"
)

func TestCompleteHabitIsIdempotentPerDay(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	habit := mustCreateHabit(t, NewHabitService(db.DB), HabitInput{Name: "Pompes", RecurrenceKind: "daily", EstimatedXP: 60})
	svc := NewProgressService(db.DB, testClock(), ProgressOptions{})

	first, err := svc.CompleteHabit(testUser, habit.ID)
	if err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}
	if first.Outcome != OutcomeCompleted {
		t.Fatalf("expected completed, got %s", first.Outcome)
	}
	if first.Profile.TotalXP != 60 || first.Profile.Level != 1 {
		t.Fatalf("unexpected profile after first completion: %+v", first.Profile)
	}
	if first.Profile.CurrentStreak != 1 || first.Profile.RecordStreak != 1 {
		t.Fatalf("expected streak 1, got %+v", first.Profile)
	}

	second, err := svc.CompleteHabit(testUser, habit.ID)
	if err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}
	if second.Outcome != OutcomeAlreadyCompleted {
		t.Fatalf("expected already_completed, got %s", second.Outcome)
	}
	if second.Profile.TotalXP != 60 {
		t.Fatalf("expected xp to be added once, got %d", second.Profile.TotalXP)
	}

	var count int64
	db.DB.Model(&db.Completion{}).Where("habit_id = ?", habit.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one completion, got %d", count)
	}
}

func TestCompleteHabitLevelsUp(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	habits := NewHabitService(db.DB)
	a := mustCreateHabit(t, habits, HabitInput{Name: "A", RecurrenceKind: "once", EstimatedXP: 70})
	b := mustCreateHabit(t, habits, HabitInput{Name: "B", RecurrenceKind: "once", EstimatedXP: 50})
	svc := NewProgressService(db.DB, testClock(), ProgressOptions{})

	if _, err := svc.CompleteHabit(testUser, a.ID); err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}
	res, err := svc.CompleteHabit(testUser, b.ID)
	if err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}
	if res.Profile.TotalXP != 120 || res.Profile.Level != 2 {
		t.Fatalf("expected xp=120 level=2, got %+v", res.Profile)
	}
}

func TestCompleteHabitRejections(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	habits := NewHabitService(db.DB)
	proof := mustCreateHabit(t, habits, HabitInput{Name: "Photo repas", RecurrenceKind: "daily", ProofRequired: true, EstimatedXP: 40})
	retired := mustCreateHabit(t, habits, HabitInput{Name: "Ancien", RecurrenceKind: "daily", EstimatedXP: 40})
	if _, err := habits.Deactivate(testUser, retired.ID); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}

	svc := NewProgressService(db.DB, testClock(), ProgressOptions{})

	res, err := svc.CompleteHabit(testUser, proof.ID)
	if err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}
	if res.Outcome != OutcomeProofPending {
		t.Fatalf("expected proof_pending, got %s", res.Outcome)
	}
	if res.Profile.TotalXP != 0 {
		t.Fatalf("expected no xp for pending proof, got %d", res.Profile.TotalXP)
	}

	var count int64
	db.DB.Model(&db.Completion{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no completion rows, got %d", count)
	}

	if _, err := svc.CompleteHabit(testUser, retired.ID); !errors.Is(err, ErrHabitInactive) {
		t.Fatalf("expected ErrHabitInactive, got %v", err)
	}
	if _, err := svc.CompleteHabit(testUser, "missing"); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestCompleteHabitExtendsStreakAndKeepsRecord(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	clock := testClock()
	habits := NewHabitService(db.DB)
	run := mustCreateHabit(t, habits, HabitInput{Name: "Courir", RecurrenceKind: "daily", EstimatedXP: 10})
	read := mustCreateHabit(t, habits, HabitInput{Name: "Lire", RecurrenceKind: "recurring", DaysOfWeek: []string{"mon"}, EstimatedXP: 10})
	mustCreateHabit(t, habits, HabitInput{Name: "Yoga", RecurrenceKind: "weekly", DaysOfWeek: []string{"sat"}, EstimatedXP: 10})

	today := clock.Now()
	for i := 1; i <= 4; i++ {
		seedCompletion(t, run.ID, progress.DaysAgo(today, i))
		seedCompletion(t, read.ID, progress.DaysAgo(today, i))
	}
	if err := db.DB.Create(&db.UserProfile{UserID: testUser, Level: 1, RecordStreak: 9}).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	svc := NewProgressService(db.DB, clock, ProgressOptions{})

	res, err := svc.CompleteHabit(testUser, run.ID)
	if err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}
	if res.Profile.CurrentStreak != 4 {
		t.Fatalf("expected partial today to keep streak 4, got %d", res.Profile.CurrentStreak)
	}

	res, err = svc.CompleteHabit(testUser, read.ID)
	if err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}
	if res.Profile.CurrentStreak != 5 {
		t.Fatalf("expected streak 5, got %d", res.Profile.CurrentStreak)
	}
	if res.Profile.RecordStreak != 9 {
		t.Fatalf("record streak must never decrease, got %d", res.Profile.RecordStreak)
	}
}

func TestRefreshStreakWithoutDailyHabitsKeepsStoredValue(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	mustCreateHabit(t, NewHabitService(db.DB), HabitInput{Name: "Yoga", RecurrenceKind: "weekly", DaysOfWeek: []string{"sat"}})
	if err := db.DB.Create(&db.UserProfile{UserID: testUser, Level: 1, CurrentStreak: 5, RecordStreak: 7}).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	svc := NewProgressService(db.DB, testClock(), ProgressOptions{})
	profile, err := svc.RefreshStreak(testUser)
	if err != nil {
		t.Fatalf("RefreshStreak returned error: %v", err)
	}
	if profile.CurrentStreak != 5 || profile.RecordStreak != 7 {
		t.Fatalf("expected stored streak to be untouched, got %+v", profile)
	}
}

func TestUncompleteHabit(t *testing.T) {
	tests := []struct {
		name      string
		reverse   bool
		wantXP    int
		wantLevel int
	}{
		{name: "keeps xp by default", reverse: false, wantXP: 130, wantLevel: 2},
		{name: "reverses xp when configured", reverse: true, wantXP: 90, wantLevel: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupServiceTestDB(t)
			defer cleanup()

			habit := mustCreateHabit(t, NewHabitService(db.DB), HabitInput{Name: "Courir", RecurrenceKind: "daily", EstimatedXP: 40})
			if err := db.DB.Create(&db.UserProfile{UserID: testUser, Level: 1, TotalXP: 90}).Error; err != nil {
				t.Fatalf("failed to seed profile: %v", err)
			}

			svc := NewProgressService(db.DB, testClock(), ProgressOptions{ReverseXPOnUncomplete: tt.reverse})
			if _, err := svc.CompleteHabit(testUser, habit.ID); err != nil {
				t.Fatalf("CompleteHabit returned error: %v", err)
			}

			res, err := svc.UncompleteHabit(testUser, habit.ID)
			if err != nil {
				t.Fatalf("UncompleteHabit returned error: %v", err)
			}
			if !res.Removed {
				t.Fatal("expected completion to be removed")
			}
			if res.Profile.TotalXP != tt.wantXP || res.Profile.Level != tt.wantLevel {
				t.Fatalf("expected xp=%d level=%d, got %+v", tt.wantXP, tt.wantLevel, res.Profile)
			}
			if res.Profile.CurrentStreak != 0 {
				t.Fatalf("expected streak to be recomputed to 0, got %d", res.Profile.CurrentStreak)
			}

			again, err := svc.UncompleteHabit(testUser, habit.ID)
			if err != nil || again.Removed {
				t.Fatalf("expected second uncomplete to be a no-op, got %+v, %v", again, err)
			}
		})
	}
}

func TestUncompleteHabitOnlyTouchesToday(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	clock := testClock()
	habit := mustCreateHabit(t, NewHabitService(db.DB), HabitInput{Name: "Courir", RecurrenceKind: "daily"})
	yesterday := progress.DaysAgo(clock.Now(), 1)
	seedCompletion(t, habit.ID, yesterday)

	svc := NewProgressService(db.DB, clock, ProgressOptions{})
	res, err := svc.UncompleteHabit(testUser, habit.ID)
	if err != nil {
		t.Fatalf("UncompleteHabit returned error: %v", err)
	}
	if res.Removed {
		t.Fatal("historical completions must not be removed")
	}

	exists, _ := NewCompletionService(db.DB).Exists(habit.ID, yesterday)
	if !exists {
		t.Fatal("expected yesterday's completion to remain")
	}
}

func TestApplyDecay(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	clock := testClock()
	habit := mustCreateHabit(t, NewHabitService(db.DB), HabitInput{Name: "Courir", RecurrenceKind: "daily"})
	seedCompletion(t, habit.ID, progress.DaysAgo(clock.Now(), 4))
	if err := db.DB.Create(&db.UserProfile{UserID: testUser, Level: 2, TotalXP: 120}).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	svc := NewProgressService(db.DB, clock, ProgressOptions{})

	res, err := svc.ApplyDecay(testUser)
	if err != nil {
		t.Fatalf("ApplyDecay returned error: %v", err)
	}
	if !res.Applied || res.Decay != 50 {
		t.Fatalf("expected decay of 50, got %+v", res)
	}
	if res.Profile.TotalXP != 70 || res.Profile.Level != 1 {
		t.Fatalf("expected xp=70 level=1, got %+v", res.Profile)
	}
	if res.Profile.LastDecayDate == nil || *res.Profile.LastDecayDate != "2024-05-20" {
		t.Fatalf("expected decay stamp, got %v", res.Profile.LastDecayDate)
	}

	again, err := svc.ApplyDecay(testUser)
	if err != nil {
		t.Fatalf("ApplyDecay returned error: %v", err)
	}
	if again.Applied || again.Profile.TotalXP != 70 {
		t.Fatalf("expected second decay to be a no-op, got %+v", again)
	}
}

func TestApplyDecaySkipsWhenActiveOrAbsent(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	clock := testClock()
	svc := NewProgressService(db.DB, clock, ProgressOptions{})

	absent, err := svc.ApplyDecay(testUser)
	if err != nil {
		t.Fatalf("ApplyDecay returned error: %v", err)
	}
	if absent.Applied || absent.Profile.Level != 1 {
		t.Fatalf("expected default profile without decay, got %+v", absent)
	}

	habit := mustCreateHabit(t, NewHabitService(db.DB), HabitInput{Name: "Courir", RecurrenceKind: "daily"})
	seedCompletion(t, habit.ID, progress.DaysAgo(clock.Now(), 1))
	if err := db.DB.Create(&db.UserProfile{UserID: testUser, Level: 3, TotalXP: 250}).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	res, err := svc.ApplyDecay(testUser)
	if err != nil {
		t.Fatalf("ApplyDecay returned error: %v", err)
	}
	if res.Applied || res.Profile.TotalXP != 250 {
		t.Fatalf("expected no decay after activity yesterday, got %+v", res)
	}
	if res.Profile.LastDecayDate != nil {
		t.Fatalf("zero decay must not stamp the profile, got %v", *res.Profile.LastDecayDate)
	}
}

func TestHomeAndWeek(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	clock := testClock()
	habits := NewHabitService(db.DB)
	run := mustCreateHabit(t, habits, HabitInput{Name: "Courir", Category: "sport", RecurrenceKind: "daily", EstimatedXP: 20})
	mustCreateHabit(t, habits, HabitInput{Name: "Lire", Category: "connaissance", RecurrenceKind: "recurring", DaysOfWeek: []string{"mon"}})
	mustCreateHabit(t, habits, HabitInput{Name: "Yoga", Category: "mental", RecurrenceKind: "weekly", DaysOfWeek: []string{"sat"}})

	svc := NewProgressService(db.DB, clock, ProgressOptions{})
	if _, err := svc.CompleteHabit(testUser, run.ID); err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}

	home, err := svc.Home(testUser)
	if err != nil {
		t.Fatalf("Home returned error: %v", err)
	}
	if home.Day != "2024-05-20" || len(home.Items) != 2 {
		t.Fatalf("expected two habits due on monday, got %d for %s", len(home.Items), home.Day)
	}
	if home.Stats.Discipline != 50 || home.Stats.Energy != 100 || home.Stats.Morale != 0 {
		t.Fatalf("unexpected stats: %+v", home.Stats)
	}
	if home.XP.TotalXP != 20 || home.XP.ToNextLevel != 80 {
		t.Fatalf("unexpected xp progress: %+v", home.XP)
	}

	week, err := svc.Week(testUser, clock.Now())
	if err != nil {
		t.Fatalf("Week returned error: %v", err)
	}
	if len(week) != 7 || week[0].Date != "2024-05-20" || !week[0].IsToday || !week[0].Active {
		t.Fatalf("unexpected first week day: %+v", week[0])
	}
	if week[1].Active || week[6].Code != progress.Sunday {
		t.Fatalf("unexpected week: %+v", week)
	}
}

func TestOnceHabitLeavesProjectionAfterCompletion(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	habit := mustCreateHabit(t, NewHabitService(db.DB), HabitInput{Name: "Prendre rendez-vous", RecurrenceKind: "once", EstimatedXP: 40})
	clock := testClock()
	svc := NewProgressService(db.DB, clock, ProgressOptions{})

	res, err := svc.CompleteHabit(testUser, habit.ID)
	if err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}
	if res.Outcome != OutcomeCompleted || res.Profile.TotalXP != 40 {
		t.Fatalf("unexpected first completion: %s %+v", res.Outcome, res.Profile)
	}

	items, err := svc.Day(testUser, svc.Today())
	if err != nil {
		t.Fatalf("Day returned error: %v", err)
	}
	if len(items) != 1 || !items[0].Completed {
		t.Fatalf("expected the habit to stay listed as done today, got %+v", items)
	}

	clock.AdvanceDays(1)

	items, err = svc.Day(testUser, svc.Today())
	if err != nil {
		t.Fatalf("Day returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected finished once habit to leave the projection, got %+v", items)
	}

	again, err := svc.CompleteHabit(testUser, habit.ID)
	if err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}
	if again.Outcome != OutcomeAlreadyCompleted {
		t.Fatalf("expected already_completed, got %s", again.Outcome)
	}
	if again.Profile.TotalXP != 40 {
		t.Fatalf("expected xp to be granted once, got %d", again.Profile.TotalXP)
	}

	var count int64
	db.DB.Model(&db.Completion{}).Where("habit_id = ?", habit.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one completion, got %d", count)
	}
}

func TestCompleteHabitRejectsHabitNotDueToday(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	habit := mustCreateHabit(t, NewHabitService(db.DB), HabitInput{Name: "Natation", RecurrenceKind: "weekly", DaysOfWeek: []string{"tue"}, EstimatedXP: 50})
	clock := testClock()
	svc := NewProgressService(db.DB, clock, ProgressOptions{})

	res, err := svc.CompleteHabit(testUser, habit.ID)
	if err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}
	if res.Outcome != OutcomeNotDue {
		t.Fatalf("expected not_due on monday, got %s", res.Outcome)
	}
	if res.Profile.TotalXP != 0 {
		t.Fatalf("expected no xp for a habit that is not due, got %d", res.Profile.TotalXP)
	}

	var count int64
	db.DB.Model(&db.Completion{}).Where("habit_id = ?", habit.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no completion, got %d", count)
	}

	clock.AdvanceDays(1)
	res, err = svc.CompleteHabit(testUser, habit.ID)
	if err != nil {
		t.Fatalf("CompleteHabit returned error: %v", err)
	}
	if res.Outcome != OutcomeCompleted || res.Profile.TotalXP != 50 {
		t.Fatalf("expected completion on tuesday, got %s %+v", res.Outcome, res.Profile)
	}
}
