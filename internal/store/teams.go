package store

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/teamtodo/teamtodo-client/internal/access"
	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
	domainErrors "github.com/teamtodo/teamtodo-client/internal/domain/errors"
)

// TeamDirectory владеет локальным реестром команд и их составов.
// Изменение состава — единственная операция ядра с межкомпонентной
// связью: подтвержденное удаление участника каскадно отзывает его
// явные права в Todo Store через OnMemberRemoved.
type TeamDirectory struct {
	mu    sync.RWMutex
	teams []*entity.Team

	api       TeamAPI
	principal PrincipalSource
	pending   *pendingSet
	log       *log.Logger

	// OnMemberRemoved вызывается после подтвержденного сервером
	// удаления участника; назначается при сборке клиента
	OnMemberRemoved func(teamID, userID string)
}

// NewTeamDirectory создает реестр команд
func NewTeamDirectory(api TeamAPI, principal PrincipalSource, logger *log.Logger) *TeamDirectory {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &TeamDirectory{
		api:       api,
		principal: principal,
		pending:   newPendingSet(),
		log:       logger,
	}
}

// List запрашивает команды у сервера, замещает локальный реестр и
// возвращает его
func (d *TeamDirectory) List(ctx context.Context) ([]*entity.Team, error) {
	teams, err := d.api.ListTeams(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.teams = teams
	d.mu.Unlock()

	return d.Snapshot(), nil
}

// Snapshot возвращает копию локального реестра в серверном порядке
func (d *TeamDirectory) Snapshot() []*entity.Team {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*entity.Team, 0, len(d.teams))
	for _, team := range d.teams {
		out = append(out, team.Clone())
	}
	return out
}

// TeamByID возвращает локальную копию команды; nil — команда неизвестна
func (d *TeamDirectory) TeamByID(teamID string) *entity.Team {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if team := d.find(teamID); team != nil {
		return team.Clone()
	}
	return nil
}

// CreateTeam создает команду. Доступно любому аутентифицированному
// пользователю; состав нового участника не получает — участников
// добавляет админ отдельно.
func (d *TeamDirectory) CreateTeam(ctx context.Context, name string) (*entity.Team, error) {
	p := d.principal.Principal()
	if p == nil {
		return nil, domainErrors.PermissionDenied("not authenticated")
	}
	if strings.TrimSpace(name) == "" {
		return nil, domainErrors.Validation("team name is required")
	}

	placeholder := &entity.Team{
		ID:        "pending-" + uuid.NewString(),
		Name:      name,
		MemberIDs: []string{},
	}

	token, _ := d.pending.begin(placeholder.ID)

	d.mu.Lock()
	d.teams = append(d.teams, placeholder)
	d.mu.Unlock()

	created, err := d.api.CreateTeam(ctx, name)
	if err != nil {
		if d.pending.finish(placeholder.ID, token) {
			d.removeByID(placeholder.ID)
		}
		return nil, err
	}

	if d.pending.finish(placeholder.ID, token) {
		d.replaceByID(placeholder.ID, created)
	}
	d.log.Debug("team created", "id", created.ID, "name", created.Name)
	return created.Clone(), nil
}

// AddMember добавляет пользователя в команду. Операция админская:
// отказ локальный и синхронный, без сетевого вызова, чтобы UI не мог
// предложить невозможное действие.
func (d *TeamDirectory) AddMember(ctx context.Context, teamID, userID string) (*entity.Team, error) {
	prior, err := d.authorizeRoster(teamID)
	if err != nil {
		return nil, err
	}
	if prior.HasMember(userID) {
		return nil, domainErrors.NewDomainError("CONFLICT", "user is already a member", domainErrors.ErrConflict)
	}

	token, ok := d.pending.begin(teamID)
	if !ok {
		return nil, domainErrors.Busy("mutation already pending for this team")
	}

	optimistic := prior.Clone()
	optimistic.MemberIDs = append(optimistic.MemberIDs, userID)
	d.replaceByID(teamID, optimistic)

	updated, err := d.api.AddMember(ctx, teamID, userID)
	if err != nil {
		if d.pending.finish(teamID, token) {
			d.replaceByID(teamID, prior)
		}
		return nil, err
	}

	if d.pending.finish(teamID, token) {
		d.replaceByID(teamID, updated)
	}
	return updated.Clone(), nil
}

// RemoveMember убирает пользователя из команды; после подтверждения
// сервером каскадно отзывает его явные права на todo этой команды
func (d *TeamDirectory) RemoveMember(ctx context.Context, teamID, userID string) (*entity.Team, error) {
	prior, err := d.authorizeRoster(teamID)
	if err != nil {
		return nil, err
	}
	if !prior.HasMember(userID) {
		return nil, domainErrors.NewDomainError("NOT_FOUND", "user is not a member", domainErrors.ErrNotFound)
	}

	token, ok := d.pending.begin(teamID)
	if !ok {
		return nil, domainErrors.Busy("mutation already pending for this team")
	}

	optimistic := prior.Clone()
	members := optimistic.MemberIDs[:0]
	for _, id := range optimistic.MemberIDs {
		if id != userID {
			members = append(members, id)
		}
	}
	optimistic.MemberIDs = members
	d.replaceByID(teamID, optimistic)

	updated, err := d.api.RemoveMember(ctx, teamID, userID)
	if err != nil {
		if d.pending.finish(teamID, token) {
			d.replaceByID(teamID, prior)
		}
		return nil, err
	}

	if d.pending.finish(teamID, token) {
		d.replaceByID(teamID, updated)
	}
	if d.OnMemberRemoved != nil {
		d.OnMemberRemoved(teamID, userID)
	}
	d.log.Debug("member removed", "team", teamID, "user", userID)
	return updated.Clone(), nil
}

// authorizeRoster проверяет право на изменение состава и возвращает
// копию команды
func (d *TeamDirectory) authorizeRoster(teamID string) (*entity.Team, error) {
	p := d.principal.Principal()
	if p == nil {
		return nil, domainErrors.PermissionDenied("not authenticated")
	}
	if !access.CanManageTeam(p) {
		return nil, domainErrors.PermissionDenied("only admins may manage team membership")
	}

	d.mu.RLock()
	team := d.find(teamID)
	d.mu.RUnlock()
	if team == nil {
		return nil, domainErrors.NewDomainError("NOT_FOUND", "team not found", domainErrors.ErrNotFound)
	}
	return team.Clone(), nil
}

// find ищет команду по id; вызывается под блокировкой
func (d *TeamDirectory) find(teamID string) *entity.Team {
	for _, team := range d.teams {
		if team.ID == teamID {
			return team
		}
	}
	return nil
}

// replaceByID заменяет запись на месте, не меняя порядок
func (d *TeamDirectory) replaceByID(teamID string, team *entity.Team) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.teams {
		if existing.ID == teamID {
			d.teams[i] = team.Clone()
			return
		}
	}
}

func (d *TeamDirectory) removeByID(teamID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.teams {
		if existing.ID == teamID {
			d.teams = append(d.teams[:i], d.teams[i+1:]...)
			return
		}
	}
}
