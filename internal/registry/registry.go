package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meshfoundry/datamesh/internal/eventbus"
	"github.com/meshfoundry/datamesh/internal/model"
	"github.com/meshfoundry/datamesh/internal/platform"
)

var (
	// ErrAccountMismatch rejects re-registering an existing domain under a
	// different account.
	ErrAccountMismatch = errors.New("already registered with a different account")

	// ErrAccountInUse rejects registering an account under a second domain.
	// Detail-type routing is per account, so a second domain would receive
	// the first domain's notifications.
	ErrAccountInUse = errors.New("account is already registered to another domain")
)

// DB defines the database operations used by the registry.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Registry is the mesh's control plane for participating domains. It owns
// the data_domains table and keeps the event bus routing rules in sync with
// it. Registration is a per-key upsert, so concurrent calls for different
// domains never contend.
type Registry struct {
	db  DB
	bus eventbus.Router
}

func New(db DB, bus eventbus.Router) *Registry {
	return &Registry{db: db, bus: bus}
}

// Register upserts a domain and installs the routing rule delivering
// "{accountID}_createResourceLinks" events to the domain's endpoint.
// Re-registering the same domain updates its endpoint; registering an
// existing domain with a different account is rejected, because detail-type
// routing is only sound while account IDs stay unique per domain.
func (r *Registry) Register(ctx context.Context, domainID, accountID, endpoint string) (*model.DataDomain, error) {
	// The broker keys bindings by (detail type, queue): binding a new
	// endpoint does not replace the old one. Read the prior endpoint so a
	// changed endpoint gets its stale rule removed.
	var oldEndpoint string
	err := r.db.QueryRow(ctx,
		`SELECT endpoint FROM data_domains WHERE domain_id = $1`, domainID,
	).Scan(&oldEndpoint)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("look up domain %s: %w", domainID, err)
	}

	var d model.DataDomain
	err = r.db.QueryRow(ctx,
		`INSERT INTO data_domains (id, domain_id, account_id, endpoint, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now(), now())
		 ON CONFLICT (domain_id) DO UPDATE
		 SET endpoint = EXCLUDED.endpoint, updated_at = now()
		 WHERE data_domains.account_id = EXCLUDED.account_id
		 RETURNING id, domain_id, account_id, endpoint, status, created_at, updated_at`,
		platform.NewID(), domainID, accountID, endpoint, model.StatusActive,
	).Scan(&d.ID, &d.DomainID, &d.AccountID, &d.Endpoint, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("domain %s is %w", domainID, ErrAccountMismatch)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("register domain %s: %w", domainID, ErrAccountInUse)
		}
		return nil, fmt.Errorf("upsert domain %s: %w", domainID, err)
	}

	if oldEndpoint != "" && oldEndpoint != endpoint {
		if err := r.bus.Unbind(ctx, model.DetailTypeFor(accountID), oldEndpoint); err != nil {
			return nil, fmt.Errorf("remove stale routing rule for domain %s: %w", domainID, err)
		}
	}

	if err := r.bus.Bind(ctx, model.DetailTypeFor(accountID), endpoint); err != nil {
		return nil, fmt.Errorf("install routing rule for domain %s: %w", domainID, err)
	}

	return &d, nil
}

// Deregister removes the routing rule and the domain row.
func (r *Registry) Deregister(ctx context.Context, domainID string) error {
	d, err := r.GetByDomainID(ctx, domainID)
	if err != nil {
		return err
	}

	if err := r.bus.Unbind(ctx, model.DetailTypeFor(d.AccountID), d.Endpoint); err != nil {
		return fmt.Errorf("remove routing rule for domain %s: %w", domainID, err)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM data_domains WHERE domain_id = $1`, domainID); err != nil {
		return fmt.Errorf("delete domain %s: %w", domainID, err)
	}
	return nil
}

func (r *Registry) GetByDomainID(ctx context.Context, domainID string) (*model.DataDomain, error) {
	var d model.DataDomain
	err := r.db.QueryRow(ctx,
		`SELECT id, domain_id, account_id, endpoint, status, created_at, updated_at
		 FROM data_domains WHERE domain_id = $1`, domainID,
	).Scan(&d.ID, &d.DomainID, &d.AccountID, &d.Endpoint, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get domain %s: %w", domainID, err)
	}
	return &d, nil
}

func (r *Registry) List(ctx context.Context, limit int, cursor string) ([]model.DataDomain, bool, error) {
	query := `SELECT id, domain_id, account_id, endpoint, status, created_at, updated_at FROM data_domains`
	args := []any{}
	if cursor != "" {
		query += ` WHERE id > $1`
		args = append(args, cursor)
	}
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	var domains []model.DataDomain
	for rows.Next() {
		var d model.DataDomain
		if err := rows.Scan(&d.ID, &d.DomainID, &d.AccountID, &d.Endpoint, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan domain: %w", err)
		}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate domains: %w", err)
	}

	hasMore := len(domains) > limit
	if hasMore {
		domains = domains[:limit]
	}
	return domains, hasMore, nil
}

// RestoreBindings re-installs routing rules for every registered domain.
// Run at startup so a fresh broker converges to the registry's state.
func (r *Registry) RestoreBindings(ctx context.Context) error {
	rows, err := r.db.Query(ctx,
		`SELECT account_id, endpoint FROM data_domains WHERE status = $1`, model.StatusActive)
	if err != nil {
		return fmt.Errorf("list domains for binding restore: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var accountID, endpoint string
		if err := rows.Scan(&accountID, &endpoint); err != nil {
			return fmt.Errorf("scan domain binding: %w", err)
		}
		if err := r.bus.Bind(ctx, model.DetailTypeFor(accountID), endpoint); err != nil {
			return fmt.Errorf("restore binding for account %s: %w", accountID, err)
		}
	}
	return rows.Err()
}
