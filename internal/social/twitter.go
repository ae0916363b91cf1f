package social

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type twitterClient struct {
	http *resty.Client
}

func newTwitterClient(options Options) twitterClient {
	baseUrl := options.TwitterBaseUrl
	if baseUrl == "" {
		baseUrl = DefaultTwitterBaseUrl
	}
	client := resty.New().SetBaseURL(baseUrl)
	if options.TwitterToken != "" {
		client.SetAuthToken(options.TwitterToken)
	}
	return twitterClient{http: client}
}

type entityIndices []int

type tweetEntity struct {
	Indices    entityIndices `json:"indices"`
	Url        string        `json:"url"`
	DisplayUrl string        `json:"display_url"`
	// media only
	MediaUrl string `json:"media_url"`
	Type     string `json:"type"`
	// hashtags only
	Text string `json:"text"`
}

type tweetResponse struct {
	Id        int64  `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`

	FavoriteCount int `json:"favorite_count"`
	RetweetCount  int `json:"retweet_count"`

	User struct {
		Id              int64  `json:"id"`
		Name            string `json:"name"`
		ScreenName      string `json:"screen_name"`
		ProfileImageUrl string `json:"profile_image_url"`
		Url             string `json:"url"`
	} `json:"user"`

	Entities struct {
		Media    []tweetEntity `json:"media"`
		Urls     []tweetEntity `json:"urls"`
		Hashtags []tweetEntity `json:"hashtags"`
	} `json:"entities"`
}

func (c twitterClient) fetchTweet(ctx context.Context, id, projectSlug string) (Tweet, error) {
	var result tweetResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", id).
		SetResult(&result).
		ForceContentType("application/json").
		Get("/1.1/statuses/show.json")
	if err != nil {
		return Tweet{}, err
	}
	if res.StatusCode() != 200 {
		return Tweet{}, fmt.Errorf("statuses/show returned %d", res.StatusCode())
	}

	createdAt, err := time.Parse(twitterTimeLayout, result.CreatedAt)
	if err != nil {
		return Tweet{}, fmt.Errorf("unexpected created_at: %w", err)
	}

	tweetUrl := fmt.Sprintf("http://twitter.com/%s/status/%d", result.User.ScreenName, result.Id)

	var photo *Photo
	html := result.Text
	subs := map[string]string{}

	for _, media := range result.Entities.Media {
		original := entityText(result.Text, media.Indices)
		subs[original] = trackedAnchor(media.Url, projectSlug, tweetUrl, "link", media.DisplayUrl)

		if media.Type == "photo" && photo == nil {
			photo = &Photo{Url: media.MediaUrl}
		}
	}
	for _, link := range result.Entities.Urls {
		original := entityText(result.Text, link.Indices)
		subs[original] = trackedAnchor(link.Url, projectSlug, tweetUrl, "link", link.DisplayUrl)
	}
	for _, hashtag := range result.Entities.Hashtags {
		original := entityText(result.Text, hashtag.Indices)
		hashtagUrl := "https://twitter.com/hashtag/" + hashtag.Text
		subs[original] = trackedAnchor(hashtagUrl, projectSlug, tweetUrl, "hashtag", "#"+hashtag.Text)
	}

	for original, replacement := range subs {
		html = strings.ReplaceAll(html, original, replacement)
	}

	return Tweet{
		Id:            result.Id,
		Url:           tweetUrl,
		Html:          html,
		FavoriteCount: result.FavoriteCount,
		RetweetCount:  result.RetweetCount,
		User: TweetUser{
			Id:              result.User.Id,
			Name:            result.User.Name,
			ScreenName:      result.User.ScreenName,
			ProfileImageUrl: result.User.ProfileImageUrl,
			Url:             result.User.Url,
		},
		CreationDate: formatCreationDate(createdAt),
		Photo:        photo,
	}, nil
}

// entity indices count codepoints, not bytes
func entityText(text string, indices entityIndices) string {
	if len(indices) != 2 {
		return ""
	}
	runes := []rune(text)
	start, stop := indices[0], indices[1]
	if start < 0 || stop > len(runes) || start > stop {
		return ""
	}
	return string(runes[start:stop])
}

func trackedAnchor(href, projectSlug, postUrl, action, label string) string {
	return fmt.Sprintf(
		`<a href="%s" target="_blank" onclick="_gaq.push(['_trackEvent', '%s', 'featured-tweet-action', '%s', 0, '%s']);">%s</a>`,
		href, projectSlug, action, postUrl, label,
	)
}
