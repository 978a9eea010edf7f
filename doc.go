// Package espalier is an event-sourced runtime core for declarative UIs.
//
// UI surfaces emit intents (navigation, domain actions, interactions); the
// engine gates them by capability level, routes them to handlers or
// state-mutation events, folds the append-only event log into a derived
// snapshot, and answers layout and design-token questions from a manifest.
//
// A minimal host looks like:
//
//	eng, err := espalier.New("espalier.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	eng.Register("cart:add", addToCart)
//	eng.Dispatch(ctx, domain.DomainAction{Name: "cart:add"})
//	fmt.Println(eng.State().Counters["cart"])
package espalier
