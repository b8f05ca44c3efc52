package gh

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/kr1x/gh-renovate/internal/models"
)

// mapError translates go-github failures into the workflow's error taxonomy.
func (c *Client) mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return models.NewRateLimitError(
			fmt.Sprintf("%s: rate limited until %s", op, rateErr.Rate.Reset.Time.Format(time.Kitchen)),
			rateErr.Rate.Reset.Time, err)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		reset := time.Now()
		if abuseErr.RetryAfter != nil {
			reset = reset.Add(*abuseErr.RetryAfter)
		}
		return models.NewRateLimitError(fmt.Sprintf("%s: secondary rate limit", op), reset, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		status := respErr.Response.StatusCode
		switch {
		case status == http.StatusNotFound:
			return &models.Error{
				Kind:       models.ErrNotFound,
				Message:    fmt.Sprintf("%s: not found", op),
				StatusCode: status,
				Err:        err,
			}
		case status == http.StatusUnauthorized:
			return models.NewAuthError(fmt.Sprintf("%s: bad credentials", op), err)
		case status == http.StatusForbidden:
			if strings.Contains(strings.ToLower(respErr.Message), "rate limit") {
				return models.NewRateLimitError(fmt.Sprintf("%s: rate limited", op), time.Time{}, err)
			}
			return models.NewAuthError(fmt.Sprintf("%s: insufficient permissions", op), err)
		case status >= http.StatusInternalServerError:
			return models.NewNetworkError(fmt.Sprintf("%s: server error", op), status, err)
		default:
			return &models.Error{
				Kind:       models.ErrUnknown,
				Message:    fmt.Sprintf("%s: %s", op, respErr.Message),
				StatusCode: status,
				Err:        err,
			}
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// mapMergeError distinguishes the merge-specific refusal conditions.
func (c *Client) mapMergeError(number int, err error) error {
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		msg := strings.ToLower(respErr.Message)
		switch respErr.Response.StatusCode {
		case http.StatusMethodNotAllowed:
			if strings.Contains(msg, "already merged") {
				return models.NewPRStateError(models.ErrAlreadyMerged, number, "already merged")
			}
			if strings.Contains(msg, "closed") {
				return models.NewPRStateError(models.ErrClosed, number, "pull request is closed")
			}
			return models.NewPRStateError(models.ErrMergeBlocked, number,
				fmt.Sprintf("merge blocked: %s", respErr.Message))
		case http.StatusConflict:
			// Head moved between our snapshot and the merge call.
			return models.NewPRStateError(models.ErrMergeBlocked, number,
				fmt.Sprintf("merge blocked: %s", respErr.Message))
		case http.StatusUnprocessableEntity:
			return models.NewPRStateError(models.ErrNotMergeable, number,
				fmt.Sprintf("not mergeable: %s", respErr.Message))
		}
	}
	return c.mapError(fmt.Sprintf("merge PR #%d", number), err)
}
