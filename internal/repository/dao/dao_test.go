package dao

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testDB is nil when no docker daemon is reachable; every test that
// needs it skips in that case.
var testDB *gorm.DB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("docker unavailable, skipping postgres-backed tests: %v", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=meritocracia",
			"POSTGRES_PASSWORD=meritocracia",
			"POSTGRES_DB=meritocracia_test",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}
	_ = resource.Expire(180)

	dsn := fmt.Sprintf(
		"host=localhost port=%s user=meritocracia password=meritocracia dbname=meritocracia_test sslmode=disable",
		resource.GetPort("5432/tcp"),
	)

	pool.MaxWait = 90 * time.Second
	if err = pool.Retry(func() error {
		db, openErr := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if openErr != nil {
			return openErr
		}

		sqlDB, pingErr := db.DB()
		if pingErr != nil {
			return pingErr
		}
		if pingErr = sqlDB.Ping(); pingErr != nil {
			return pingErr
		}

		testDB = db
		return nil
	}); err != nil {
		log.Fatalf("could not connect to postgres container: %v", err)
	}

	if err = InitTables(testDB); err != nil {
		log.Fatalf("could not migrate tables: %v", err)
	}

	code := m.Run()

	if err = pool.Purge(resource); err != nil {
		log.Printf("could not purge postgres container: %v", err)
	}

	os.Exit(code)
}

func requireDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres container not available")
	}

	// Each test starts from empty tables.
	for _, table := range []string{"events", "team_monthly_points", "teams", "users"} {
		require.NoError(t, testDB.Exec("DELETE FROM "+table).Error)
	}

	return testDB
}

func mustInsertTeam(t *testing.T, d *TeamDAO, name, color string) Team {
	t.Helper()
	team, err := d.Insert(context.Background(), Team{Name: name, ColorCode: color})
	require.NoError(t, err)

	return team
}

func TestTeamDAO_Insert_DuplicateName(t *testing.T) {
	db := requireDB(t)
	d := NewTeamDAO(db)

	mustInsertTeam(t, d, "ALFA", "#e74c3c")

	_, err := d.Insert(context.Background(), Team{Name: "ALFA", ColorCode: "#000000"})
	assert.ErrorIs(t, err, ErrTeamNameExists)
}

func TestTeamDAO_FindByNameFold(t *testing.T) {
	db := requireDB(t)
	d := NewTeamDAO(db)
	ctx := context.Background()

	created := mustInsertTeam(t, d, "BRAVO", "#3498db")

	found, err := d.FindByNameFold(ctx, "bravo")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = d.FindByNameFold(ctx, "fantasma")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestEventDAO_InsertWithLedger(t *testing.T) {
	db := requireDB(t)
	teams := NewTeamDAO(db)
	events := NewEventDAO(db)
	ctx := context.Background()

	team := mustInsertTeam(t, teams, "ALFA", "#e74c3c")

	created, err := events.InsertWithLedger(ctx, Event{
		TeamID:           team.ID,
		Type:             "apreensao",
		Description:      "Apreensão de arma",
		Points:           50,
		OfficersInvolved: "Não informado",
		EventDate:        time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		MonthYear:        "JUNHO_2025",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	stored, err := teams.FindByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, stored.Points)

	buckets, err := teams.FindMonthlyPointsByMonth(ctx, "JUNHO_2025")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, 50, buckets[0].Points)

	_, err = events.InsertWithLedger(ctx, Event{
		TeamID:      team.ID + 999,
		Type:        "patrulha",
		Description: "x",
		Points:      10,
		EventDate:   time.Now(),
		MonthYear:   "JUNHO_2025",
	})
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestEventDAO_UpdateWithLedger_PointsDiff(t *testing.T) {
	db := requireDB(t)
	teams := NewTeamDAO(db)
	events := NewEventDAO(db)
	ctx := context.Background()

	team := mustInsertTeam(t, teams, "ALFA", "#e74c3c")
	created, err := events.InsertWithLedger(ctx, Event{
		TeamID:           team.ID,
		Type:             "apreensao",
		Description:      "Apreensão",
		Points:           50,
		OfficersInvolved: "Não informado",
		EventDate:        time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		MonthYear:        "JUNHO_2025",
	})
	require.NoError(t, err)

	created.Points = 30
	revised, err := events.UpdateWithLedger(ctx, created, LedgerAdjustment{PointsDiff: -20})
	require.NoError(t, err)
	assert.Equal(t, 30, revised.Points)
	assert.Equal(t, created.CreatedAt.UTC().Truncate(time.Second), revised.CreatedAt.UTC().Truncate(time.Second))

	stored, err := teams.FindByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.Points)

	buckets, err := teams.FindMonthlyPointsByMonth(ctx, "JUNHO_2025")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, 30, buckets[0].Points)
}

func TestEventDAO_UpdateWithLedger_TeamChange(t *testing.T) {
	db := requireDB(t)
	teams := NewTeamDAO(db)
	events := NewEventDAO(db)
	ctx := context.Background()

	alfa := mustInsertTeam(t, teams, "ALFA", "#e74c3c")
	bravo := mustInsertTeam(t, teams, "BRAVO", "#3498db")

	created, err := events.InsertWithLedger(ctx, Event{
		TeamID:           alfa.ID,
		Type:             "apreensao",
		Description:      "Apreensão",
		Points:           40,
		OfficersInvolved: "Não informado",
		EventDate:        time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		MonthYear:        "JUNHO_2025",
	})
	require.NoError(t, err)

	created.TeamID = bravo.ID
	_, err = events.UpdateWithLedger(ctx, created, LedgerAdjustment{
		TeamChanged: true,
		OldTeamID:   alfa.ID,
		OldPoints:   40,
		NewPoints:   40,
	})
	require.NoError(t, err)

	storedAlfa, err := teams.FindByID(ctx, alfa.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, storedAlfa.Points)

	storedBravo, err := teams.FindByID(ctx, bravo.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, storedBravo.Points)

	// The bucket stays with the original team on a team change.
	buckets, err := teams.FindMonthlyPointsByMonth(ctx, "JUNHO_2025")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, alfa.ID, buckets[0].TeamID)
	assert.Equal(t, 40, buckets[0].Points)
}

func TestEventDAO_DeleteWithLedger(t *testing.T) {
	db := requireDB(t)
	teams := NewTeamDAO(db)
	events := NewEventDAO(db)
	ctx := context.Background()

	team := mustInsertTeam(t, teams, "ALFA", "#e74c3c")
	created, err := events.InsertWithLedger(ctx, Event{
		TeamID:           team.ID,
		Type:             "prisao",
		Description:      "Cumprimento de mandado",
		Points:           25,
		OfficersInvolved: "Não informado",
		EventDate:        time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		MonthYear:        "JUNHO_2025",
	})
	require.NoError(t, err)

	require.NoError(t, events.DeleteWithLedger(ctx, created))

	_, err = events.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	stored, err := teams.FindByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Points)

	buckets, err := teams.FindMonthlyPointsByMonth(ctx, "JUNHO_2025")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, 0, buckets[0].Points)
}

func TestEventDAO_ResetMonth(t *testing.T) {
	db := requireDB(t)
	teams := NewTeamDAO(db)
	events := NewEventDAO(db)
	ctx := context.Background()

	team := mustInsertTeam(t, teams, "ALFA", "#e74c3c")

	for _, month := range []string{"JUNHO_2025", "JULHO_2025"} {
		_, err := events.InsertWithLedger(ctx, Event{
			TeamID:           team.ID,
			Type:             "patrulha",
			Description:      "Patrulha",
			Points:           10,
			OfficersInvolved: "Não informado",
			EventDate:        time.Now(),
			MonthYear:        month,
		})
		require.NoError(t, err)
	}

	require.NoError(t, events.ResetMonth(ctx, "JUNHO_2025"))

	june, err := events.FindByMonthYear(ctx, "JUNHO_2025")
	require.NoError(t, err)
	assert.Empty(t, june)

	july, err := events.FindByMonthYear(ctx, "JULHO_2025")
	require.NoError(t, err)
	assert.Len(t, july, 1)

	buckets, err := teams.FindMonthlyPointsByMonth(ctx, "JUNHO_2025")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, 0, buckets[0].Points)
}

func TestEventDAO_ConcurrentLedgerWrites(t *testing.T) {
	db := requireDB(t)
	teams := NewTeamDAO(db)
	events := NewEventDAO(db)
	ctx := context.Background()

	team := mustInsertTeam(t, teams, "ALFA", "#e74c3c")

	const existing = 10
	created := make([]Event, existing)
	for i := range created {
		event, err := events.InsertWithLedger(ctx, Event{
			TeamID:           team.ID,
			Type:             "patrulha",
			Description:      fmt.Sprintf("Patrulha %d", i),
			Points:           10,
			OfficersInvolved: "Não informado",
			EventDate:        time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
			MonthYear:        "JUNHO_2025",
		})
		require.NoError(t, err)
		created[i] = event
	}

	// Interleave revisions and inserts; the atomic SQL updates must not
	// lose any delta.
	var wg sync.WaitGroup
	errs := make(chan error, existing*2)
	for i := 0; i < existing; i++ {
		wg.Add(2)

		event := created[i]
		go func() {
			defer wg.Done()
			event.Points = 25
			_, err := events.UpdateWithLedger(ctx, event, LedgerAdjustment{PointsDiff: 15})
			errs <- err
		}()

		n := i
		go func() {
			defer wg.Done()
			_, err := events.InsertWithLedger(ctx, Event{
				TeamID:           team.ID,
				Type:             "apreensao",
				Description:      fmt.Sprintf("Apreensão %d", n),
				Points:           5,
				OfficersInvolved: "Não informado",
				EventDate:        time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC),
				MonthYear:        "JUNHO_2025",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	live, err := events.FindByMonthYear(ctx, "JUNHO_2025")
	require.NoError(t, err)
	liveSum := 0
	for _, event := range live {
		liveSum += event.Points
	}
	assert.Equal(t, existing*25+existing*5, liveSum)

	stored, err := teams.FindByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, liveSum, stored.Points, "running total must equal the live event sum")

	buckets, err := teams.FindMonthlyPointsByMonth(ctx, "JUNHO_2025")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, liveSum, buckets[0].Points, "bucket must equal the live event sum")
}

func TestTeamDAO_ZeroMonth_And_ForceSet(t *testing.T) {
	db := requireDB(t)
	teams := NewTeamDAO(db)
	ctx := context.Background()

	alfa := mustInsertTeam(t, teams, "ALFA", "#e74c3c")
	bravo := mustInsertTeam(t, teams, "BRAVO", "#3498db")

	require.NoError(t, teams.ForceSetMonthlyPoints(ctx, "JUNHO_2025", map[uint]int{
		alfa.ID:  120,
		bravo.ID: 80,
	}))

	buckets, err := teams.FindMonthlyPointsByMonth(ctx, "JUNHO_2025")
	require.NoError(t, err)
	assert.Len(t, buckets, 2)

	require.NoError(t, teams.ZeroMonth(ctx, "JUNHO_2025"))

	buckets, err = teams.FindMonthlyPointsByMonth(ctx, "JUNHO_2025")
	require.NoError(t, err)
	for _, bucket := range buckets {
		assert.Equal(t, 0, bucket.Points)
	}
}

func TestSeed(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, db))
	// Running it again must not duplicate anything.
	require.NoError(t, Seed(ctx, db))

	teams, err := NewTeamDAO(db).FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 4)

	users := NewUserDAO(db)
	admin, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	// A drifted password is restored on the next seed pass.
	require.NoError(t, users.UpdatePassword(ctx, admin.ID, "changed"))
	require.NoError(t, Seed(ctx, db))

	admin, err = users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin123", admin.Password)
}
