package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/formpost/internal/adapters/repository"
	"github.com/okian/formpost/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func submission(id string, at time.Time) model.Submission {
	return model.NewSubmission(id, model.SubmissionRecord{
		Name:  "name-" + id,
		Email: id + "@example.com",
	}, at)
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("When getting an unknown id", func() {
			_, err := store.Get(ctx, "missing")

			Convey("Then it should report not found", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When three submissions are saved", func() {
			for i := range 3 {
				So(store.Save(ctx, submission(fmt.Sprintf("s%d", i), base.Add(time.Duration(i)*time.Second))), ShouldBeNil)
			}

			Convey("Then each should be retrievable by id", func() {
				got, err := store.Get(ctx, "s1")
				So(err, ShouldBeNil)
				So(got.Record.Name, ShouldEqual, "name-s1")
				So(got.CreatedAt, ShouldEqual, base.Add(time.Second))
			})

			Convey("And the count should be three", func() {
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})

			Convey("And listing should return newest first up to the limit", func() {
				list, err := store.List(ctx, 2)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 2)
				So(list[0].ID, ShouldEqual, "s2")
				So(list[1].ID, ShouldEqual, "s1")
			})

			Convey("And a limit past the size should return everything", func() {
				list, err := store.List(ctx, 10)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 3)
			})

			Convey("And saving an existing id should replace it in place", func() {
				updated := submission("s0", base)
				updated.Record.Name = "renamed"
				So(store.Save(ctx, updated), ShouldBeNil)

				n, _ := store.Count(ctx)
				So(n, ShouldEqual, 3)
				got, _ := store.Get(ctx, "s0")
				So(got.Record.Name, ShouldEqual, "renamed")
				list, _ := store.List(ctx, 3)
				So(list[2].ID, ShouldEqual, "s0")
			})
		})

		Convey("When listing with a non-positive limit", func() {
			_, err := store.List(ctx, 0)

			Convey("Then it should be rejected", func() {
				So(err, ShouldEqual, repository.ErrInvalidLimit)
			})
		})

		Convey("When saving concurrently", func() {
			var wg sync.WaitGroup
			for i := range 50 {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_ = store.Save(ctx, submission(fmt.Sprintf("c%d", i), base))
				}(i)
			}
			wg.Wait()

			Convey("Then every submission should be kept", func() {
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 50)
			})
		})
	})
}
