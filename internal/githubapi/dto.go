// Data transfer objects for the GitHub responses the census touches.
// Date fields stay as the ISO-8601 strings GitHub sends; the output
// payload passes them through untouched.

package githubapi

type Account struct {
	Login   string `json:"login"`
	HtmlUrl string `json:"html_url"`
	Type    string `json:"type"`
}

type CommitSignature struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

type CommitDetail struct {
	Message   string          `json:"message"`
	Author    CommitSignature `json:"author"`
	Committer CommitSignature `json:"committer"`
}

type RepositoryRef struct {
	FullName string `json:"full_name"`
	HtmlUrl  string `json:"html_url"`
}

// CommitItem is a single hit from the commit search endpoint.
type CommitItem struct {
	Sha        string        `json:"sha"`
	HtmlUrl    string        `json:"html_url"`
	Commit     CommitDetail  `json:"commit"`
	Author     *Account      `json:"author"`
	Repository RepositoryRef `json:"repository"`
}

type SearchResponse struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []CommitItem `json:"items"`
}

type License struct {
	SpdxId string `json:"spdx_id"`
}

// RepoDetail is the per-repository resource used for enrichment.
type RepoDetail struct {
	FullName        string   `json:"full_name"`
	HtmlUrl         string   `json:"html_url"`
	Description     string   `json:"description"`
	Homepage        string   `json:"homepage"`
	Topics          []string `json:"topics"`
	Language        string   `json:"language"`
	Owner           Account  `json:"owner"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	PushedAt        string   `json:"pushed_at"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	Archived        bool     `json:"archived"`
	IsTemplate      bool     `json:"is_template"`
	License         *License `json:"license"`
}

type TopicsResponse struct {
	Names []string `json:"names"`
}
