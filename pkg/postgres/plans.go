package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sai290404/Kochi-Metro/pkg/db"
)

// InsertPlan stores a committed plan and its decisions in one
// transaction.
func (d *DB) InsertPlan(ctx context.Context, plan db.InductionPlan, decisions []db.PlanDecision) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO induction_plan (id, run_id, snapshot_version, service_date, status,
			objective_value, target_service_count, shortfall, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, plan.ID, plan.RunID, plan.SnapshotVersion, plan.ServiceDate, plan.Status,
		plan.ObjectiveValue, plan.TargetServiceCount, plan.Shortfall, plan.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	for _, dec := range decisions {
		var stablingBay, rationale *string
		if dec.StablingBay != "" {
			stablingBay = &dec.StablingBay
		}
		if dec.Rationale != "" {
			rationale = &dec.Rationale
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO plan_decision (id, plan_id, trainset_id, role,
				readiness, branding, urgency, combined, stabling_bay, rationale)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, dec.ID, dec.PlanID, dec.TrainsetID, dec.Role,
			dec.Readiness, dec.Branding, dec.Urgency, dec.Combined, stablingBay, rationale)
		if err != nil {
			return fmt.Errorf("failed to insert decision for %s: %w", dec.TrainsetID, err)
		}
	}

	return tx.Commit(ctx)
}

// GetLatestPlan retrieves the most recently generated plan with its
// decisions. Returns (nil, nil, nil) when no plan has been committed.
func (d *DB) GetLatestPlan(ctx context.Context) (*db.InductionPlan, []db.PlanDecision, error) {
	var plan db.InductionPlan
	err := d.pool.QueryRow(ctx, `
		SELECT id, run_id, snapshot_version, service_date, status,
			objective_value, target_service_count, shortfall, generated_at
		FROM induction_plan
		ORDER BY generated_at DESC
		LIMIT 1
	`).Scan(&plan.ID, &plan.RunID, &plan.SnapshotVersion, &plan.ServiceDate, &plan.Status,
		&plan.ObjectiveValue, &plan.TargetServiceCount, &plan.Shortfall, &plan.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query latest plan: %w", err)
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, plan_id, trainset_id, role, readiness, branding, urgency,
			combined, stabling_bay, rationale
		FROM plan_decision
		WHERE plan_id = $1
		ORDER BY trainset_id
	`, plan.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query plan decisions: %w", err)
	}
	defer rows.Close()

	var decisions []db.PlanDecision
	for rows.Next() {
		var dec db.PlanDecision
		var stablingBay, rationale *string
		if err := rows.Scan(&dec.ID, &dec.PlanID, &dec.TrainsetID, &dec.Role,
			&dec.Readiness, &dec.Branding, &dec.Urgency, &dec.Combined,
			&stablingBay, &rationale); err != nil {
			return nil, nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		if stablingBay != nil {
			dec.StablingBay = *stablingBay
		}
		if rationale != nil {
			dec.Rationale = *rationale
		}
		decisions = append(decisions, dec)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating decisions: %w", err)
	}

	return &plan, decisions, nil
}

// ListPlans returns the most recent plans, newest first.
func (d *DB) ListPlans(ctx context.Context, limit int) ([]db.InductionPlan, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, run_id, snapshot_version, service_date, status,
			objective_value, target_service_count, shortfall, generated_at
		FROM induction_plan
		ORDER BY generated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []db.InductionPlan
	for rows.Next() {
		var plan db.InductionPlan
		if err := rows.Scan(&plan.ID, &plan.RunID, &plan.SnapshotVersion, &plan.ServiceDate,
			&plan.Status, &plan.ObjectiveValue, &plan.TargetServiceCount, &plan.Shortfall,
			&plan.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}

	return plans, nil
}
