// Package notion implements workspace.Client against the Notion REST API (v1,
// Notion-Version 2022-06-28).
//
// Records map to database pages, collections to databases, and blocks to blocks.
// Deleting a record archives the page. A 404 is reported as workspace.ErrNotFound;
// every other non-2xx answer is an *APIError carrying Notion's status, code and message.
//
// The client does not retry and does not rate limit; compose it with
// workspace.NewRetryingClient.
//
//	ws := workspace.NewRetryingClient(notion.New(notion.Config{Token: token}), retry.DefaultPolicy(), log)
//	root, _ := notion.ExtractPageID(pageURL)
//	layout, err := workspace.Discover(ctx, ws, root)
package notion
