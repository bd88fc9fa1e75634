// Package client is the Go SDK for the campus platform realtime service.
//
// It owns one persistent push channel per session (Conn), ephemeral room
// memberships (RoomRegistry), the viewer's notification cache with its unread
// counter (Store), and the live-feed reconciler that merges pushed deltas into
// REST-fetched collections (FeedReconciler).
//
// A typical session:
//
//	conn := client.NewConn(client.ConnConfig{URL: wsURL}, logg)
//	if err := conn.Connect(ctx); err != nil { ... }
//	defer conn.Close()
//
//	api := client.NewRestClient(baseURL, token)
//	store := client.NewStore(api, logg)
//	detach := store.Attach(conn)
//	defer detach()
//	_ = store.LoadAll(ctx)
//	_ = store.LoadUnreadCount(ctx)
//
//	feed := client.NewFeedReconciler(api, conn, logg)
//	feed.Open()
//	defer feed.Close()
//	_ = feed.Hydrate(ctx)
package client
