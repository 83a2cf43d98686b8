package kvstore

import (
	"github.com/gnolang/specobj/internal/behave"
	"github.com/gnolang/specobj/internal/speclogic"
)

// Behaviors returns the set, del and get behaviors.
func Behaviors() ([]speclogic.Behavior, error) {
	defs := []struct {
		method string
		fn     behave.Func
	}{
		{"del", returnsNil},
		{"set", returnsNil},
		{"get", lastWriterWins},
	}

	out := make([]speclogic.Behavior, 0, len(defs))
	for _, d := range defs {
		bh, err := behave.Define(d.method, d.fn)
		if err != nil {
			return nil, err
		}
		out = append(out, bh)
	}
	return out, nil
}

// Registry returns the behaviors as a registry.
func Registry() (*speclogic.Registry, error) {
	behaviors, err := Behaviors()
	if err != nil {
		return nil, err
	}
	return speclogic.NewRegistry(behaviors...)
}

func returnsNil(b *behave.Builder, _, output speclogic.Expr) speclogic.Expr {
	return b.Eq(output, nil)
}

// lastWriterWins: get(k) is nil when k was deleted with no later set, or
// never set; otherwise it is the value of a set of k that no later set or
// del of k overrides.
func lastWriterWins(b *behave.Builder, args, output speclogic.Expr) speclogic.Expr {
	key := b.Index(args, 0)

	setAt := func(t speclogic.Expr) speclogic.Expr {
		return b.ExistNamed("value", func(value *speclogic.Variable) speclogic.Expr {
			return b.Received("set").At(t).With(key, value).Expr()
		})
	}

	keyDeleted := b.ExistNamed("delete_time", func(deleteTime *speclogic.Variable) speclogic.Expr {
		return b.Both(
			b.Received("del").At(deleteTime).With(key).Expr(),
			b.Not(b.ExistNamed("set_time", func(setTime *speclogic.Variable) speclogic.Expr {
				return b.Both(b.Gt(setTime, deleteTime), setAt(setTime))
			})),
		)
	})

	keyNeverSet := b.Not(b.ExistNamed("set_time", func(setTime *speclogic.Variable) speclogic.Expr {
		return setAt(setTime)
	}))

	lastSet := b.ExistNamed("set_time", func(setTime *speclogic.Variable) speclogic.Expr {
		keySetAtSetTime := b.Received("set").At(setTime).With(key, output).Expr()

		keyNotSetLater := b.Not(b.ExistNamed("later_set_time", func(later *speclogic.Variable) speclogic.Expr {
			return b.Both(b.Gt(later, setTime), setAt(later))
		}))

		keyNotDeletedLater := b.Not(b.ExistNamed("later_delete_time", func(later *speclogic.Variable) speclogic.Expr {
			return b.Both(b.Gt(later, setTime), b.Received("del").At(later).With(key).Expr())
		}))

		return b.All(keySetAtSetTime, keyNotSetLater, keyNotDeletedLater)
	})

	return b.Ite(b.Eq(output, nil), b.Either(keyDeleted, keyNeverSet), lastSet)
}
