package social

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type facebookClient struct {
	http  *resty.Client
	token string
}

func newFacebookClient(options Options) facebookClient {
	baseUrl := options.FacebookBaseUrl
	if baseUrl == "" {
		baseUrl = DefaultFacebookBaseUrl
	}
	return facebookClient{
		http:  resty.New().SetBaseURL(baseUrl),
		token: options.FacebookToken,
	}
}

type facebookPostResponse struct {
	Id          string `json:"id"`
	Message     string `json:"message"`
	Link        string `json:"link"`
	Name        string `json:"name"`
	Caption     string `json:"caption"`
	Description string `json:"description"`
	Picture     string `json:"picture"`
	CreatedTime string `json:"created_time"`
	From        struct {
		Id string `json:"id"`
	} `json:"from"`
}

type facebookUserResponse struct {
	Name string `json:"name"`
	Link string `json:"link"`
	Url  string `json:"url"`
}

type facebookSummaryResponse struct {
	Summary struct {
		TotalCount int `json:"total_count"`
	} `json:"summary"`
}

func (c facebookClient) getObject(ctx context.Context, path string, out any, params map[string]string) error {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("access_token", c.token).
		SetResult(out).
		ForceContentType("application/json")
	for k, v := range params {
		req.SetQueryParam(k, v)
	}

	res, err := req.Get("/" + path)
	if err != nil {
		return err
	}
	if res.StatusCode() != 200 {
		return fmt.Errorf("graph api returned %d for %s", res.StatusCode(), path)
	}
	return nil
}

// fetchPost pulls the post plus the author profile, author picture and
// like/comment summaries, one graph call each.
func (c facebookClient) fetchPost(ctx context.Context, id string) (FacebookPost, error) {
	var post facebookPostResponse
	err := c.getObject(ctx, id, &post, nil)
	if err != nil {
		return FacebookPost{}, err
	}

	var user facebookUserResponse
	err = c.getObject(ctx, post.From.Id, &user, nil)
	if err != nil {
		return FacebookPost{}, err
	}

	var picture facebookUserResponse
	err = c.getObject(ctx, post.From.Id+"/picture", &picture, map[string]string{"redirect": "false"})
	if err != nil {
		return FacebookPost{}, err
	}

	var likes facebookSummaryResponse
	err = c.getObject(ctx, post.Id+"/likes", &likes, map[string]string{"summary": "true"})
	if err != nil {
		return FacebookPost{}, err
	}

	var comments facebookSummaryResponse
	err = c.getObject(ctx, post.Id+"/comments", &comments, map[string]string{"summary": "true"})
	if err != nil {
		return FacebookPost{}, err
	}

	createdAt, err := time.Parse(facebookTimeLayout, post.CreatedTime)
	if err != nil {
		return FacebookPost{}, fmt.Errorf("unexpected created_time: %w", err)
	}

	return FacebookPost{
		Id:      post.Id,
		Message: post.Message,
		Link: FacebookLink{
			Url:         post.Link,
			Name:        post.Name,
			Caption:     post.Caption,
			Description: post.Description,
			Picture:     post.Picture,
		},
		From: FacebookFrom{
			Name:    user.Name,
			Link:    user.Link,
			Picture: picture.Url,
		},
		Likes:        likes.Summary.TotalCount,
		Comments:     comments.Summary.TotalCount,
		CreationDate: formatCreationDate(createdAt),
	}, nil
}
