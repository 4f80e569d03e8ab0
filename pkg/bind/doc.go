// Package bind connects state containers to component instances.
//
// Connect takes an ordered set of named bindings and returns a Definition
// the host merges into its component. The binder keeps props in sync with
// the containers and decides when to render:
//
//   - changes made by an instance's own action are coalesced and flushed as
//     a single render when the action completes, even if it fails or
//     panics;
//   - changes made anywhere else render every other subscribed instance
//     immediately;
//   - loadable bindings render once more when their pending handle settles.
//
// A minimal counter:
//
//	count := state.New(0)
//	def, err := bind.Connect(bind.Entries{
//	    {Name: "count", Value: count},
//	    {Name: "increase", Value: func(ctx context.Context) {
//	        count.Set(ctx, count.Get()+1)
//	        count.Set(ctx, count.Get()+1)
//	    }},
//	})
//
// Calling def.Methods["increase"] writes count=2 to the instance and renders
// it once.
//
// Binding values are classified in order: an explicit *Wrapper (State,
// Model, Loadable, Literal, Method), a state.Container, a function with one
// of the accepted action signatures, and finally any other value as a
// literal.
package bind
