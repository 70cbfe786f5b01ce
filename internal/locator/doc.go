// Package locator resolves what to download for the running platform.
//
// Three interchangeable strategies implement the Locator interface:
//
//   - TaggedRelease follows tagged GitHub releases and picks an asset from
//     the structured asset list by a per-OS word. When no release is marked
//     latest and every tag of the full listing parses as a semantic version,
//     the highest version wins over the listing order.
//   - NightlyBranch follows a branch head; artifact URLs are a deterministic
//     template, so no listing call is made.
//   - PullRequest reads artifact links out of a pull request description,
//     scraping the rendered page as a best-effort fallback.
//
// Which strategy runs is a configuration decision; callers only see the
// interface.
package locator
