// internal/adapter/scraper/twitter.go

package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"

	"octopal/internal/domain/feed"
)

// defaultAvatarMarker appears in the URL of accounts that never uploaded an
// avatar.
const defaultAvatarMarker = "default_profile"

// authorizer satisfies the client's Authorizer interface. Request signing is
// handled by the OAuth1 transport, so Add is a no-op.
type authorizer struct{}

func (a authorizer) Add(req *http.Request) {}

// Config holds Twitter API credentials
type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// TwitterScraper fetches recent posts from the Twitter search API and maps
// them to feed items.
type TwitterScraper struct {
	client *twitter.Client
}

// NewTwitterScraper creates a new Twitter scraper
func NewTwitterScraper(config Config) *TwitterScraper {
	oauthConfig := oauth1.NewConfig(config.ConsumerKey, config.ConsumerSecret)
	token := oauth1.NewToken(config.AccessToken, config.AccessSecret)
	httpClient := oauthConfig.Client(oauth1.NoContext, token)

	return &TwitterScraper{
		client: &twitter.Client{
			Authorizer: authorizer{},
			Client:     httpClient,
			Host:       "https://api.twitter.com",
		},
	}
}

// FetchRecent searches recent posts matching the query and returns them as
// feed items ready for analysis.
func (s *TwitterScraper) FetchRecent(ctx context.Context, query string, maxResults int) ([]feed.Item, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	opts := twitter.TweetRecentSearchOpts{
		MaxResults:  maxResults,
		Expansions:  []twitter.Expansion{twitter.ExpansionAuthorID},
		TweetFields: []twitter.TweetField{twitter.TweetFieldCreatedAt, twitter.TweetFieldEntities},
		UserFields: []twitter.UserField{
			twitter.UserFieldUserName,
			twitter.UserFieldVerified,
			twitter.UserFieldProfileImageURL,
			twitter.UserFieldCreatedAt,
		},
	}

	resp, err := s.client.TweetRecentSearch(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error searching tweets: %w", err)
	}

	users := make(map[string]*twitter.UserObj)
	if resp.Raw.Includes != nil {
		for _, u := range resp.Raw.Includes.Users {
			users[u.ID] = u
		}
	}

	items := make([]feed.Item, 0, len(resp.Raw.Tweets))
	for _, t := range resp.Raw.Tweets {
		items = append(items, mapTweet(t, users[t.AuthorID]))
	}
	return items, nil
}

// mapTweet converts one tweet plus its author into a feed item.
func mapTweet(t *twitter.TweetObj, author *twitter.UserObj) feed.Item {
	item := feed.Item{
		ID:   t.ID,
		Text: t.Text,
	}

	if postedAt, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
		item.PostedAt = &postedAt
	}

	if t.Entities != nil {
		for _, u := range t.Entities.URLs {
			link := u.ExpandedURL
			if link == "" {
				link = u.URL
			}
			if link != "" {
				item.Links = append(item.Links, link)
			}
		}
	}

	if author == nil {
		return item
	}

	item.AuthorHandle = "@" + author.UserName
	item.IsVerified = author.Verified
	item.AvatarURL = author.ProfileImageURL
	item.HasAvatar = author.ProfileImageURL != "" && !strings.Contains(author.ProfileImageURL, defaultAvatarMarker)
	if joined, err := time.Parse(time.RFC3339, author.CreatedAt); err == nil {
		item.AccountJoined = "Joined " + joined.Format("January 2006")
	}

	return item
}
