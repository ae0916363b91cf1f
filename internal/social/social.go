// Package social assembles the "featured social" digest: a JSON snapshot of
// hand-picked microblog and social-network posts shown on the site.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultTwitterBaseUrl  = "https://api.twitter.com"
	DefaultFacebookBaseUrl = "https://graph.facebook.com"

	twitterTimeLayout  = "Mon Jan 02 15:04:05 -0700 2006"
	facebookTimeLayout = "2006-01-02T15:04:05-0700"
)

type Options struct {
	// analytics event namespace baked into the generated anchors
	ProjectSlug string

	// featured post urls straight from the copy spreadsheet, blank slots
	// are skipped
	FeaturedTweets   []string
	FeaturedFacebook []string

	TwitterBaseUrl  string
	FacebookBaseUrl string
	// bearer-style tokens
	TwitterToken  string
	FacebookToken string

	// where featured.json lands
	Dest string
}

type Photo struct {
	Url string `json:"url"`
}

type TweetUser struct {
	Id              int64  `json:"id"`
	Name            string `json:"name"`
	ScreenName      string `json:"screen_name"`
	ProfileImageUrl string `json:"profile_image_url"`
	Url             string `json:"url"`
}

type Tweet struct {
	Id            int64     `json:"id"`
	Url           string    `json:"url"`
	Html          string    `json:"html"`
	FavoriteCount int       `json:"favorite_count"`
	RetweetCount  int       `json:"retweet_count"`
	User          TweetUser `json:"user"`
	CreationDate  string    `json:"creation_date"`
	Photo         *Photo    `json:"photo"`
}

type FacebookLink struct {
	Url         string `json:"url"`
	Name        string `json:"name"`
	Caption     string `json:"caption,omitempty"`
	Description string `json:"description"`
	Picture     string `json:"picture"`
}

type FacebookFrom struct {
	Name    string `json:"name"`
	Link    string `json:"link"`
	Picture string `json:"picture"`
}

type FacebookPost struct {
	Id           string       `json:"id"`
	Message      string       `json:"message"`
	Link         FacebookLink `json:"link"`
	From         FacebookFrom `json:"from"`
	Likes        int          `json:"likes"`
	Comments     int          `json:"comments"`
	CreationDate string       `json:"creation_date"`
}

type Digest struct {
	Tweets        []Tweet        `json:"tweets"`
	FacebookPosts []FacebookPost `json:"facebook_posts"`
}

// UpdateFeatured polls both APIs for the configured posts and writes the
// digest snapshot. A slot that fails to fetch is logged and skipped, the
// digest still gets written.
func UpdateFeatured(ctx context.Context, options Options) error {
	slog.InfoContext(ctx, "fetching featured tweets", "count", len(options.FeaturedTweets))
	digest := Digest{
		Tweets:        []Tweet{},
		FacebookPosts: []FacebookPost{},
	}

	twitter := newTwitterClient(options)
	for _, postUrl := range options.FeaturedTweets {
		if strings.TrimSpace(postUrl) == "" {
			continue
		}
		tweet, err := twitter.fetchTweet(ctx, lastUrlSegment(postUrl), options.ProjectSlug)
		if err != nil {
			slog.ErrorContext(ctx, "could not fetch featured tweet", "url", postUrl, "err", err)
			continue
		}
		digest.Tweets = append(digest.Tweets, tweet)
	}

	slog.InfoContext(ctx, "fetching featured facebook posts", "count", len(options.FeaturedFacebook))
	facebook := newFacebookClient(options)
	for _, postUrl := range options.FeaturedFacebook {
		if strings.TrimSpace(postUrl) == "" {
			continue
		}
		post, err := facebook.fetchPost(ctx, lastUrlSegment(postUrl))
		if err != nil {
			slog.ErrorContext(ctx, "could not fetch featured facebook post", "url", postUrl, "err", err)
			continue
		}
		digest.FacebookPosts = append(digest.FacebookPosts, post)
	}

	data, err := json.Marshal(digest)
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(options.Dest), 0o755)
	if err != nil {
		return err
	}
	return os.WriteFile(options.Dest, data, 0o644)
}

func lastUrlSegment(postUrl string) string {
	segments := strings.Split(strings.TrimRight(postUrl, "/"), "/")
	return segments[len(segments)-1]
}

// formatCreationDate renders the abbreviated "Jan 2" style the front end
// shows next to each post.
func formatCreationDate(t time.Time) string {
	return fmt.Sprintf("%s %d", t.Format("Jan"), t.Day())
}
