package substrate_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/comptrack/internal/adapters/substrate"
	"github.com/okian/comptrack/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func env(title string, fields ...model.Field) model.Envelope {
	return model.Envelope{Title: title, Fields: fields}
}

// storeBehavior runs the Store contract against any implementation.
func storeBehavior(t *testing.T, name string, open func(t *testing.T) substrate.Store) {
	t.Helper()

	Convey("Given an empty "+name+" store", t, func() {
		ctx := context.Background()
		store := open(t)
		defer func() { _ = store.Close() }()

		ref := substrate.ChannelRef{Category: "compositions", Channel: "sg"}

		Convey("When listing channels of an unknown category", func() {
			_, err := store.Channels(ctx, "compositions")

			Convey("Then it should return the not-found sentinel", func() {
				So(errors.Is(err, substrate.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When ensuring a category twice", func() {
			So(store.EnsureCategory(ctx, "compositions"), ShouldBeNil)
			So(store.EnsureCategory(ctx, "compositions"), ShouldBeNil)

			Convey("Then it should be listable and empty", func() {
				channels, err := store.Channels(ctx, "compositions")
				So(err, ShouldBeNil)
				So(channels, ShouldBeEmpty)
			})
		})

		Convey("When ensuring a channel", func() {
			So(store.EnsureChannel(ctx, ref), ShouldBeNil)
			So(store.EnsureChannel(ctx, ref), ShouldBeNil)

			Convey("Then the category exists implicitly with one channel", func() {
				channels, err := store.Channels(ctx, "compositions")
				So(err, ShouldBeNil)
				So(channels, ShouldResemble, []string{"sg"})
			})

			Convey("And appends return distinct message IDs", func() {
				id1, err := store.Append(ctx, ref, env("Compo SG"))
				So(err, ShouldBeNil)
				id2, err := store.Append(ctx, ref, env("Compo SG"))
				So(err, ShouldBeNil)
				So(id1, ShouldNotEqual, id2)
			})

			Convey("And scans come back newest first", func() {
				_, err := store.Append(ctx, ref, env("first"))
				So(err, ShouldBeNil)
				_, err = store.Append(ctx, ref, env("second"))
				So(err, ShouldBeNil)
				_, err = store.Append(ctx, ref, env("third"))
				So(err, ShouldBeNil)

				msgs, err := store.Scan(ctx, ref, 10)
				So(err, ShouldBeNil)
				So(len(msgs), ShouldEqual, 3)
				So(msgs[0].Envelope.Title, ShouldEqual, "third")
				So(msgs[2].Envelope.Title, ShouldEqual, "first")

				Convey("And the scan window bounds the result", func() {
					bounded, err := store.Scan(ctx, ref, 2)
					So(err, ShouldBeNil)
					So(len(bounded), ShouldEqual, 2)
					So(bounded[0].Envelope.Title, ShouldEqual, "third")
					So(bounded[1].Envelope.Title, ShouldEqual, "second")
				})

				Convey("And count respects the same bound", func() {
					n, err := store.Count(ctx, ref, 10)
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 3)

					n, err = store.Count(ctx, ref, 2)
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 2)
				})
			})

			Convey("And an edit preserves identity and position", func() {
				first, err := store.Append(ctx, ref, env("old title", model.Field{Name: "Patch", Value: "15.21"}))
				So(err, ShouldBeNil)
				_, err = store.Append(ctx, ref, env("newer"))
				So(err, ShouldBeNil)

				err = store.Edit(ctx, ref, first, env("new title", model.Field{Name: "Patch", Value: "15.22"}))
				So(err, ShouldBeNil)

				msgs, err := store.Scan(ctx, ref, 10)
				So(err, ShouldBeNil)
				So(len(msgs), ShouldEqual, 2)
				// Edited message stays in its original (older) slot.
				So(msgs[1].ID, ShouldEqual, first)
				So(msgs[1].Envelope.Title, ShouldEqual, "new title")
				v, ok := msgs[1].Envelope.Field("patch")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "15.22")
			})

			Convey("And a delete removes exactly one message", func() {
				id1, err := store.Append(ctx, ref, env("keep me"))
				So(err, ShouldBeNil)
				id2, err := store.Append(ctx, ref, env("drop me"))
				So(err, ShouldBeNil)

				So(store.Delete(ctx, ref, id2), ShouldBeNil)

				msgs, err := store.Scan(ctx, ref, 10)
				So(err, ShouldBeNil)
				So(len(msgs), ShouldEqual, 1)
				So(msgs[0].ID, ShouldEqual, id1)

				Convey("And deleting it again reports not found", func() {
					So(errors.Is(store.Delete(ctx, ref, id2), substrate.ErrNotFound), ShouldBeTrue)
				})
			})

			Convey("And editing an unknown message reports not found", func() {
				err := store.Edit(ctx, ref, "no-such-id", env("x"))
				So(errors.Is(err, substrate.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When appending to an unknown channel", func() {
			_, err := store.Append(ctx, substrate.ChannelRef{Category: "compositions", Channel: "ghost"}, env("x"))
			So(errors.Is(err, substrate.ErrNotFound), ShouldBeTrue)
		})

		Convey("When scanning with a non-positive limit", func() {
			So(store.EnsureChannel(ctx, ref), ShouldBeNil)
			_, err := store.Scan(ctx, ref, 0)
			So(errors.Is(err, substrate.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("When asking for sizes", func() {
			So(store.EnsureChannel(ctx, ref), ShouldBeNil)
			_, err := store.Append(ctx, ref, env("a"))
			So(err, ShouldBeNil)

			channels, envelopes, err := store.Sizes(ctx)
			So(err, ShouldBeNil)
			So(channels, ShouldEqual, 1)
			So(envelopes, ShouldEqual, 1)
		})
	})
}

func TestMemoryStore(t *testing.T) {
	storeBehavior(t, "memory", func(t *testing.T) substrate.Store {
		t.Helper()
		return substrate.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	storeBehavior(t, "sqlite", func(t *testing.T) substrate.Store {
		t.Helper()
		store, err := substrate.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "tracker.db"))
		if err != nil {
			t.Fatalf("failed to open sqlite store: %v", err)
		}
		return store
	})
}

func TestChannelName(t *testing.T) {
	Convey("Given channel name derivation", t, func() {
		So(substrate.ChannelName("SG"), ShouldEqual, "sg")
		So(substrate.ChannelName("Nashor Radiant"), ShouldEqual, "nashor-radiant")
		So(substrate.ChannelName("  Frost  "), ShouldEqual, "frost")
	})
}
