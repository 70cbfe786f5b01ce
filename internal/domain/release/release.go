package release

// Asset is a single downloadable file offered by a release or artifact listing.
type Asset struct {
	// Name is the filename the remote source lists the asset under.
	Name string
	// URL is the direct download location of the asset.
	URL string
}

// Release describes what a remote source currently offers.
type Release struct {
	// Identifier is the value compared against the installed state:
	// a release tag, a commit SHA, or a resolved download URL.
	Identifier string
	// Assets are the downloadable candidates in the order the remote listed them.
	Assets []Asset
}

// Installed is the persisted record of the last successful install.
// Exactly one schema variant is populated depending on the update source:
// installed_version+repo for tagged releases, latest_commit for nightlies,
// download_url+repo+pr_number for pull request builds.
type Installed struct {
	// InstalledVersion is the release tag recorded by the tagged-release source.
	InstalledVersion string `json:"installed_version,omitempty"`
	// LatestCommit is the branch head SHA recorded by the nightly source.
	LatestCommit string `json:"latest_commit,omitempty"`
	// DownloadURL is the artifact URL recorded by the pull-request source.
	DownloadURL string `json:"download_url,omitempty"`
	// Repo is the owner/name of the repository the install came from.
	Repo string `json:"repo,omitempty"`
	// PRNumber is the pull request whose artifact was installed.
	PRNumber int `json:"pr_number,omitempty"`
}

// Identifier returns the value to compare against the freshly queried remote
// identifier, regardless of which schema variant is populated.
func (s *Installed) Identifier() string {
	if s == nil {
		return ""
	}

	switch {
	case s.InstalledVersion != "":
		return s.InstalledVersion
	case s.LatestCommit != "":
		return s.LatestCommit
	default:
		return s.DownloadURL
	}
}

// Clone returns a copy of the record to avoid leaking internal references.
func (s *Installed) Clone() *Installed {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// AssetNames returns the names of the provided assets, preserving order.
// Used to list candidates in diagnostics when resolution fails.
func AssetNames(assets []Asset) []string {
	names := make([]string, 0, len(assets))
	for _, asset := range assets {
		names = append(names, asset.Name)
	}

	return names
}
