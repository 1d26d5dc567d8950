package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

type createTeamRequest struct {
	Name string `json:"name"`
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

// ListTeams выполняет GET /teams
func (c *Client) ListTeams(ctx context.Context) ([]*entity.Team, error) {
	var dtos []teamDTO
	if err := c.do(ctx, http.MethodGet, "/teams", nil, nil, &dtos, true); err != nil {
		return nil, err
	}
	teams := make([]*entity.Team, 0, len(dtos))
	for _, dto := range dtos {
		teams = append(teams, toTeamEntity(dto))
	}
	return teams, nil
}

// CreateTeam выполняет POST /teams
func (c *Client) CreateTeam(ctx context.Context, name string) (*entity.Team, error) {
	var dto teamDTO
	if err := c.do(ctx, http.MethodPost, "/teams", nil, createTeamRequest{Name: name}, &dto, true); err != nil {
		return nil, err
	}
	return toTeamEntity(dto), nil
}

// AddMember выполняет POST /teams/:id/users
func (c *Client) AddMember(ctx context.Context, teamID, userID string) (*entity.Team, error) {
	var dto teamDTO
	err := c.do(ctx, http.MethodPost, "/teams/"+url.PathEscape(teamID)+"/users", nil, addMemberRequest{UserID: userID}, &dto, true)
	if err != nil {
		return nil, err
	}
	return toTeamEntity(dto), nil
}

// RemoveMember выполняет DELETE /teams/:id/users/:userId
func (c *Client) RemoveMember(ctx context.Context, teamID, userID string) (*entity.Team, error) {
	var dto teamDTO
	path := "/teams/" + url.PathEscape(teamID) + "/users/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &dto, true); err != nil {
		return nil, err
	}
	return toTeamEntity(dto), nil
}
