package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/formpost/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("formpost"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	return dsn
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	dsn := startPostgres(t)

	Convey("Given a postgres store", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := repository.OpenPostgres(ctx, dsn)
		So(err, ShouldBeNil)
		defer func() { _ = store.Close() }()

		base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("When submissions are saved", func() {
			So(store.Save(ctx, submission("pg-1", base)), ShouldBeNil)
			So(store.Save(ctx, submission("pg-2", base.Add(time.Minute))), ShouldBeNil)

			Convey("Then they should round-trip with UTC timestamps", func() {
				got, err := store.Get(ctx, "pg-1")
				So(err, ShouldBeNil)
				So(got.Record.Email, ShouldEqual, "pg-1@example.com")
				So(got.Record.Phone, ShouldEqual, "")
				So(got.CreatedAt.Equal(base), ShouldBeTrue)
				So(got.CreatedAt.Location(), ShouldEqual, time.UTC)
			})

			Convey("And listing should put the newest first", func() {
				list, err := store.List(ctx, 1)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 1)
				So(list[0].ID, ShouldEqual, "pg-2")
			})

			Convey("And the count should include them", func() {
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldBeGreaterThanOrEqualTo, 2)
			})
		})

		Convey("When getting an unknown id", func() {
			_, err := store.Get(ctx, "nope")

			Convey("Then it should report not found", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When the table already exists", func() {
			Convey("Then migrating again should be a no-op", func() {
				So(store.Migrate(ctx), ShouldBeNil)
			})
		})
	})
}
