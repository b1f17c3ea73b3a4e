// internal/service/analysis/credibility.go

package analysis

import (
	"net/url"
	"strings"

	"octopal/internal/domain/feed"
)

// domainRating is one entry of the curated source-credibility table.
type domainRating struct {
	Score       int
	Category    string
	Description string
}

// domainRatings is the curated credibility table, keyed by registrable domain.
var domainRatings = map[string]domainRating{
	// Established news organizations
	"reuters.com":        {95, "Established News", "International wire service"},
	"apnews.com":         {95, "Established News", "International wire service"},
	"bbc.com":            {90, "Established News", "Public service broadcaster"},
	"bbc.co.uk":          {90, "Established News", "Public service broadcaster"},
	"nytimes.com":        {88, "Established News", "National newspaper of record"},
	"washingtonpost.com": {88, "Established News", "National newspaper of record"},
	"wsj.com":            {88, "Established News", "National business newspaper"},
	"theguardian.com":    {87, "Established News", "International newspaper"},
	"economist.com":      {88, "Established News", "International weekly"},
	"ft.com":             {88, "Established News", "International business newspaper"},
	"bloomberg.com":      {86, "Established News", "Business news service"},
	"cnn.com":            {80, "Established News", "Cable news network"},
	"nbcnews.com":        {82, "Established News", "Broadcast news network"},
	"abcnews.go.com":     {82, "Established News", "Broadcast news network"},
	"cbsnews.com":        {82, "Established News", "Broadcast news network"},
	"latimes.com":        {85, "Established News", "Regional newspaper of record"},
	"usatoday.com":       {80, "Established News", "National newspaper"},
	"time.com":           {83, "Established News", "News magazine"},
	"theatlantic.com":    {83, "Established News", "News and analysis magazine"},
	"axios.com":          {82, "Established News", "Digital news outlet"},
	"politico.com":       {82, "Established News", "Political news outlet"},
	"aljazeera.com":      {78, "Established News", "International broadcaster"},

	// Public broadcasting
	"npr.org": {90, "Public Broadcasting", "Public radio network"},
	"pbs.org": {88, "Public Broadcasting", "Public television network"},
	"cbc.ca":  {88, "Public Broadcasting", "Canadian public broadcaster"},
	"abc.net.au": {88, "Public Broadcasting", "Australian public broadcaster"},
	"dw.com":  {88, "Public Broadcasting", "German public broadcaster"},

	// Government and science
	"nih.gov":    {90, "Government/Science", "National health institute"},
	"cdc.gov":    {90, "Government/Science", "Public health agency"},
	"nasa.gov":   {90, "Government/Science", "Space agency"},
	"who.int":    {88, "Government/Science", "International health body"},
	"nature.com": {90, "Government/Science", "Peer-reviewed journal"},
	"science.org": {90, "Government/Science", "Peer-reviewed journal"},
	"scientificamerican.com": {85, "Government/Science", "Science magazine"},

	// Fact checkers
	"snopes.com":      {82, "Fact Checking", "Fact-checking site"},
	"factcheck.org":   {85, "Fact Checking", "Fact-checking site"},
	"politifact.com":  {82, "Fact Checking", "Fact-checking site"},
	"fullfact.org":    {82, "Fact Checking", "Fact-checking site"},

	// Partisan and tabloid
	"foxnews.com":      {45, "Partisan/Tabloid", "Partisan cable news"},
	"msnbc.com":        {45, "Partisan/Tabloid", "Partisan cable news"},
	"nypost.com":       {42, "Partisan/Tabloid", "Tabloid newspaper"},
	"dailymail.co.uk":  {35, "Partisan/Tabloid", "Tabloid newspaper"},
	"thesun.co.uk":     {35, "Partisan/Tabloid", "Tabloid newspaper"},
	"breitbart.com":    {35, "Partisan/Tabloid", "Hyperpartisan outlet"},
	"huffpost.com":     {45, "Partisan/Tabloid", "Partisan digital outlet"},
	"dailykos.com":     {38, "Partisan/Tabloid", "Hyperpartisan outlet"},
	"theblaze.com":     {38, "Partisan/Tabloid", "Hyperpartisan outlet"},

	// State-controlled and conspiracy
	"rt.com":            {20, "State-Controlled", "State-controlled broadcaster"},
	"sputniknews.com":   {20, "State-Controlled", "State-controlled outlet"},
	"presstv.ir":        {20, "State-Controlled", "State-controlled outlet"},
	"globaltimes.cn":    {25, "State-Controlled", "State-controlled outlet"},
	"infowars.com":      {10, "Conspiracy", "Conspiracy site"},
	"naturalnews.com":   {10, "Conspiracy", "Conspiracy and pseudoscience site"},
	"beforeitsnews.com": {10, "Conspiracy", "Conspiracy aggregator"},
	"zerohedge.com":     {30, "Conspiracy", "Conspiracy-adjacent finance blog"},

	// URL shorteners, provenance unknown
	"bit.ly":   {35, "URL Shortener", "Shortened link, destination unknown"},
	"tinyurl.com": {35, "URL Shortener", "Shortened link, destination unknown"},
	"t.co":     {40, "URL Shortener", "Platform link shortener"},
	"goo.gl":   {35, "URL Shortener", "Shortened link, destination unknown"},

	// Social platforms and user-generated content
	"twitter.com":   {40, "Social Platform", "User-generated content"},
	"x.com":         {40, "Social Platform", "User-generated content"},
	"facebook.com":  {40, "Social Platform", "User-generated content"},
	"youtube.com":   {45, "Social Platform", "User-generated video"},
	"tiktok.com":    {40, "Social Platform", "User-generated video"},
	"reddit.com":    {45, "Social Platform", "User-generated forums"},
	"medium.com":    {50, "Social Platform", "User-published essays"},
	"substack.com":  {50, "Social Platform", "User-published newsletters"},
}

const (
	// neutralCredibility is used when an item carries no resolvable links.
	neutralCredibility = 50
	// unknownCredibility is used for domains absent from the table.
	unknownCredibility = 40
)

// registrableDomain extracts the lookup key for a link: the host without any
// leading "www.".
func registrableDomain(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		// Tolerate bare "example.com/path" links
		u, err = url.Parse("https://" + strings.TrimSpace(link))
		if err != nil || u.Host == "" {
			return ""
		}
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

// rateDomain looks a domain up in the curated table, falling back to suffix
// rules and finally the unknown default.
func rateDomain(domain string) feed.SourceDetail {
	if r, ok := domainRatings[domain]; ok {
		return feed.SourceDetail{Domain: domain, Score: r.Score, Category: r.Category, Description: r.Description}
	}

	switch {
	case strings.HasSuffix(domain, ".edu"):
		return feed.SourceDetail{Domain: domain, Score: 80, Category: "Academic", Description: "Educational institution"}
	case strings.HasSuffix(domain, ".gov"):
		return feed.SourceDetail{Domain: domain, Score: 80, Category: "Government", Description: "Government site"}
	case strings.HasSuffix(domain, ".org"):
		return feed.SourceDetail{Domain: domain, Score: 65, Category: "Organization", Description: "Nonprofit or organization site"}
	}

	return feed.SourceDetail{Domain: domain, Score: unknownCredibility, Category: "Unknown/Unverified", Description: "Domain not in credibility index"}
}

// scoreSourceCredibility rates an item's links. The per-item credibility is
// the mean across its resolvable links; items without links score neutral.
func scoreSourceCredibility(links []string) (int, bool, []feed.SourceDetail) {
	var details []feed.SourceDetail
	total := 0
	for _, link := range links {
		domain := registrableDomain(link)
		if domain == "" {
			continue
		}
		d := rateDomain(domain)
		details = append(details, d)
		total += d.Score
	}

	if len(details) == 0 {
		return neutralCredibility, false, nil
	}
	return int(float64(total)/float64(len(details)) + 0.5), true, details
}
