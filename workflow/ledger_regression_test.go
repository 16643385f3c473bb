package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/dra_backend/config"
	"bitbucket.org/mmdatafocus/dra_backend/models"
	"bitbucket.org/mmdatafocus/dra_backend/utils"
	"bitbucket.org/mmdatafocus/dra_backend/workflow"
	"github.com/shopspring/decimal"
)

// End-to-end ledger coverage against real MySQL + Redis containers. The
// scenario: a center funded with 5000 spends through a folder, edits and
// deletes a purchase order, then runs the full reimbursement and receipt
// cycle. Every step asserts both AvailableFunds and RunningTotal.

func TestLedgerDocumentLifecycleRestoresFunds(t *testing.T) {
	ctx := setupIntegrationEnv(t)

	center := createTestCenter(t, ctx, "5000")
	piece := createTestCatalogItem(t, ctx, "Oil filter", models.CatalogKindPiece, "20")
	supplier := createTestSupplier(t, ctx)

	dra, err := workflow.CreateDra(ctx, &models.NewDra{
		CenterId:     center.ID,
		CreationDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateDra: %v", err)
	}
	if dra.Num != fmt.Sprintf("%d%d", center.ID, dra.SequenceNo) {
		t.Fatalf("folder number %q does not embed center and sequence", dra.Num)
	}

	// 2 x 100.00 at 20% tax = 240.00
	ba, err := workflow.CreateBonAchat(ctx, dra.Num, &models.NewDocument{
		Num:          "BA-0001",
		SupplierId:   supplier.ID,
		DocumentDate: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: piece.ID, Qty: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100)},
		},
	})
	if err != nil {
		t.Fatalf("CreateBonAchat: %v", err)
	}
	if ba.TotalAmount.Cmp(decimal.NewFromInt(240)) != 0 {
		t.Fatalf("expected total 240, got %s", ba.TotalAmount)
	}
	assertCenterFunds(t, ctx, center.ID, "4760")
	assertRunningTotal(t, ctx, dra.Num, "240")

	// edit to 5 x 100.00 at 20% = 600.00
	ba, err = workflow.UpdateBonAchat(ctx, ba.Num, &models.NewDocument{
		Num:          "BA-0001",
		SupplierId:   supplier.ID,
		DocumentDate: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: piece.ID, Qty: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(100)},
		},
	})
	if err != nil {
		t.Fatalf("UpdateBonAchat: %v", err)
	}
	if ba.TotalAmount.Cmp(decimal.NewFromInt(600)) != 0 {
		t.Fatalf("expected total 600 after edit, got %s", ba.TotalAmount)
	}
	if len(ba.Details) != 1 || ba.Details[0].Qty.Cmp(decimal.NewFromInt(5)) != 0 {
		t.Fatalf("expected one detail with qty 5, got %+v", ba.Details)
	}
	assertCenterFunds(t, ctx, center.ID, "4400")
	assertRunningTotal(t, ctx, dra.Num, "600")

	if err := workflow.DeleteBonAchat(ctx, ba.Num); err != nil {
		t.Fatalf("DeleteBonAchat: %v", err)
	}
	assertCenterFunds(t, ctx, center.ID, "5000")
	assertRunningTotal(t, ctx, dra.Num, "0")

	// recreating the identical document lands the folder back where it was
	recreated, err := workflow.CreateBonAchat(ctx, dra.Num, &models.NewDocument{
		Num:          "BA-0001",
		SupplierId:   supplier.ID,
		DocumentDate: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: piece.ID, Qty: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(100)},
		},
	})
	if err != nil {
		t.Fatalf("CreateBonAchat(recreate): %v", err)
	}
	if recreated.TotalAmount.Cmp(decimal.NewFromInt(600)) != 0 {
		t.Fatalf("expected recreated total 600, got %s", recreated.TotalAmount)
	}
	assertCenterFunds(t, ctx, center.ID, "4400")
	assertRunningTotal(t, ctx, dra.Num, "600")
}

// A delete racing an edit must credit back whatever total is current when the
// delete holds the posting lock, never the total it saw before locking. Either
// serialization order leaves the center back at its starting funds.
func TestLedgerConcurrentEditAndDeleteKeepFundsConsistent(t *testing.T) {
	ctx := setupIntegrationEnv(t)

	center := createTestCenter(t, ctx, "5000")
	piece := createTestCatalogItem(t, ctx, "Spark plug", models.CatalogKindPiece, "20")
	supplier := createTestSupplier(t, ctx)

	dra, err := workflow.CreateDra(ctx, &models.NewDra{
		CenterId:     center.ID,
		CreationDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateDra: %v", err)
	}

	for i := 0; i < 5; i++ {
		num := fmt.Sprintf("BA-RACE-%d", i)
		// 2 x 100.00 at 20% tax = 240.00
		if _, err := workflow.CreateBonAchat(ctx, dra.Num, &models.NewDocument{
			Num:          num,
			SupplierId:   supplier.ID,
			DocumentDate: time.Now().UTC(),
			Details: []*models.NewDocumentItem{
				{CatalogItemId: piece.ID, Qty: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100)},
			},
		}); err != nil {
			t.Fatalf("CreateBonAchat: %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			// bumps the total from 240 to 600
			_, err := workflow.UpdateBonAchat(ctx, num, &models.NewDocument{
				Num:          num,
				SupplierId:   supplier.ID,
				DocumentDate: time.Now().UTC(),
				Details: []*models.NewDocumentItem{
					{CatalogItemId: piece.ID, Qty: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(100)},
				},
			})
			if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
				t.Errorf("UpdateBonAchat: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := workflow.DeleteBonAchat(ctx, num); err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
				t.Errorf("DeleteBonAchat: %v", err)
			}
		}()
		wg.Wait()

		// the edit may have lost the race; clean up whatever remains
		if _, err := models.GetBonAchat(ctx, num); err == nil {
			if err := workflow.DeleteBonAchat(ctx, num); err != nil {
				t.Fatalf("DeleteBonAchat(remaining): %v", err)
			}
		}
		assertCenterFunds(t, ctx, center.ID, "5000")
		assertRunningTotal(t, ctx, dra.Num, "0")
	}
}

func TestLedgerRejectsCeilingAndInsufficientFundsWithoutSideEffects(t *testing.T) {
	ctx := setupIntegrationEnv(t)

	center := createTestCenter(t, ctx, "50000")
	piece := createTestCatalogItem(t, ctx, "Bearing", models.CatalogKindPiece, "0")
	service := createTestCatalogItem(t, ctx, "Towing", models.CatalogKindPrestation, "0")
	supplier := createTestSupplier(t, ctx)

	dra, err := workflow.CreateDra(ctx, &models.NewDra{
		CenterId:     center.ID,
		CreationDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateDra: %v", err)
	}

	// over the 10000 purchase-order ceiling
	_, err = workflow.CreateBonAchat(ctx, dra.Num, &models.NewDocument{
		Num:          "BA-CEIL",
		SupplierId:   supplier.ID,
		DocumentDate: time.Now().UTC(),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: piece.ID, Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10001)},
		},
	})
	if !errors.Is(err, utils.ErrCeilingExceeded) {
		t.Fatalf("expected ceiling error, got %v", err)
	}
	assertCenterFunds(t, ctx, center.ID, "50000")
	assertRunningTotal(t, ctx, dra.Num, "0")

	// same amount is fine as an invoice (ceiling 20000)
	f, err := workflow.CreateFacture(ctx, dra.Num, &models.NewDocument{
		Num:          "FA-0001",
		SupplierId:   supplier.ID,
		DocumentDate: time.Now().UTC(),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: service.ID, Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10001)},
		},
	})
	if err != nil {
		t.Fatalf("CreateFacture: %v", err)
	}
	if f.TotalAmount.Cmp(decimal.NewFromInt(10001)) != 0 {
		t.Fatalf("expected invoice total 10001, got %s", f.TotalAmount)
	}
	assertCenterFunds(t, ctx, center.ID, "39999")

	// purchase orders reject non-piece catalog items
	_, err = workflow.CreateBonAchat(ctx, dra.Num, &models.NewDocument{
		Num:          "BA-KIND",
		SupplierId:   supplier.ID,
		DocumentDate: time.Now().UTC(),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: service.ID, Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
	})
	if err == nil {
		t.Fatal("expected purchase order with a service line to be rejected")
	}

	// drain remaining funds below a new document's total
	_, err = workflow.CreateFacture(ctx, dra.Num, &models.NewDocument{
		Num:          "FA-0002",
		SupplierId:   supplier.ID,
		DocumentDate: time.Now().UTC(),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: service.ID, Qty: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(10000)},
		},
	})
	if !errors.Is(err, utils.ErrCeilingExceeded) {
		t.Fatalf("expected ceiling error for oversized invoice, got %v", err)
	}
	poor := createTestCenter(t, ctx, "100")
	poorDra, err := workflow.CreateDra(ctx, &models.NewDra{
		CenterId:     poor.ID,
		CreationDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateDra(poor): %v", err)
	}
	_, err = workflow.CreateFacture(ctx, poorDra.Num, &models.NewDocument{
		Num:          "FA-POOR",
		SupplierId:   supplier.ID,
		DocumentDate: time.Now().UTC(),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: service.ID, Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(150)},
		},
	})
	if !errors.Is(err, utils.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds error, got %v", err)
	}
	assertCenterFunds(t, ctx, poor.ID, "100")
}

func TestLedgerReimbursementCycle(t *testing.T) {
	ctx := setupIntegrationEnv(t)

	center := createTestCenter(t, ctx, "5000")
	piece := createTestCatalogItem(t, ctx, "Brake pad", models.CatalogKindPiece, "0")
	supplier := createTestSupplier(t, ctx)

	dra, err := workflow.CreateDra(ctx, &models.NewDra{
		CenterId:     center.ID,
		CreationDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateDra: %v", err)
	}

	if _, err := workflow.CreateBonAchat(ctx, dra.Num, &models.NewDocument{
		Num:          "BA-R1",
		SupplierId:   supplier.ID,
		DocumentDate: time.Now().UTC(),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: piece.ID, Qty: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(400)},
		},
	}); err != nil {
		t.Fatalf("CreateBonAchat: %v", err)
	}
	assertCenterFunds(t, ctx, center.ID, "3800")

	// reimbursement requires an accepted folder
	if _, err := workflow.CreateRemboursement(ctx, dra.Num, &models.NewRemboursement{
		Date:   time.Now().UTC(),
		Method: models.RemboursementMethodCheck,
	}); !errors.Is(err, utils.ErrFolderNotAccepted) {
		t.Fatalf("expected folder-not-accepted error, got %v", err)
	}

	if _, err := workflow.TransitionDra(ctx, dra.Num, models.DraStateAccepted, nil); err != nil {
		t.Fatalf("TransitionDra(Accepted): %v", err)
	}

	// accepted folders take no new documents
	if _, err := workflow.CreateBonAchat(ctx, dra.Num, &models.NewDocument{
		Num:          "BA-R2",
		SupplierId:   supplier.ID,
		DocumentDate: time.Now().UTC(),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: piece.ID, Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
	}); !errors.Is(err, utils.ErrFolderNotEditable) {
		t.Fatalf("expected folder-not-editable error, got %v", err)
	}

	remb, err := workflow.CreateRemboursement(ctx, dra.Num, &models.NewRemboursement{
		Date:   time.Now().UTC(),
		Method: models.RemboursementMethodCheck,
	})
	if err != nil {
		t.Fatalf("CreateRemboursement: %v", err)
	}
	assertDraState(t, ctx, dra.Num, models.DraStateReimbursed)

	if _, err := workflow.CreateRemboursement(ctx, dra.Num, &models.NewRemboursement{
		Date:   time.Now().UTC(),
		Method: models.RemboursementMethodCash,
	}); !errors.Is(err, utils.ErrFolderNotAccepted) && !errors.Is(err, utils.ErrDuplicateRemboursement) {
		t.Fatalf("expected duplicate reimbursement to be rejected, got %v", err)
	}

	enc, err := workflow.CreateEncaissement(ctx, remb.ID, &models.NewEncaissement{
		CenterId: center.ID,
		Date:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateEncaissement: %v", err)
	}
	if enc.Amount.Cmp(decimal.NewFromInt(1200)) != 0 {
		t.Fatalf("expected receipt amount 1200, got %s", enc.Amount)
	}
	assertCenterFunds(t, ctx, center.ID, "5000")

	// one receipt per reimbursement and center
	if _, err := workflow.CreateEncaissement(ctx, remb.ID, &models.NewEncaissement{
		CenterId: center.ID,
		Date:     time.Now().UTC(),
	}); !errors.Is(err, utils.ErrDuplicateEncaissement) {
		t.Fatalf("expected duplicate receipt error, got %v", err)
	}
	assertCenterFunds(t, ctx, center.ID, "5000")

	if err := workflow.DeleteEncaissement(ctx, center.ID, remb.ID); err != nil {
		t.Fatalf("DeleteEncaissement: %v", err)
	}
	assertCenterFunds(t, ctx, center.ID, "3800")
	assertDraState(t, ctx, dra.Num, models.DraStateAccepted)

	// reversing again finds no receipt and must not debit a second time
	if err := workflow.DeleteEncaissement(ctx, center.ID, remb.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected second reversal to report not found, got %v", err)
	}
	assertCenterFunds(t, ctx, center.ID, "3800")
	assertDraState(t, ctx, dra.Num, models.DraStateAccepted)
}

func TestLedgerFolderDeleteRestoresAllDocuments(t *testing.T) {
	ctx := setupIntegrationEnv(t)

	center := createTestCenter(t, ctx, "10000")
	piece := createTestCatalogItem(t, ctx, "Gasket", models.CatalogKindPiece, "0")
	charge := createTestCatalogItem(t, ctx, "Fuel", models.CatalogKindCharge, "0")
	supplier := createTestSupplier(t, ctx)

	dra, err := workflow.CreateDra(ctx, &models.NewDra{
		CenterId:     center.ID,
		CreationDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateDra: %v", err)
	}

	// one active folder per center
	if _, err := workflow.CreateDra(ctx, &models.NewDra{
		CenterId:     center.ID,
		CreationDate: time.Now().UTC(),
	}); !errors.Is(err, utils.ErrActiveFolderExists) {
		t.Fatalf("expected active-folder-exists error, got %v", err)
	}

	if _, err := workflow.CreateBonAchat(ctx, dra.Num, &models.NewDocument{
		Num:          "BA-D1",
		SupplierId:   supplier.ID,
		DocumentDate: time.Now().UTC(),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: piece.ID, Qty: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(500)},
		},
	}); err != nil {
		t.Fatalf("CreateBonAchat: %v", err)
	}
	if _, err := workflow.CreateFacture(ctx, dra.Num, &models.NewDocument{
		Num:          "FA-D1",
		SupplierId:   supplier.ID,
		DocumentDate: time.Now().UTC(),
		StampDuty:    decimal.NewFromInt(5),
		Details: []*models.NewDocumentItem{
			{CatalogItemId: charge.ID, Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(300)},
		},
	}); err != nil {
		t.Fatalf("CreateFacture: %v", err)
	}
	assertCenterFunds(t, ctx, center.ID, "8695")

	if err := workflow.DeleteDra(ctx, dra.Num); err != nil {
		t.Fatalf("DeleteDra: %v", err)
	}
	assertCenterFunds(t, ctx, center.ID, "10000")

	if _, err := models.GetDra(ctx, dra.Num); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected folder to be gone, got %v", err)
	}
	if _, err := models.GetBonAchat(ctx, "BA-D1"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected purchase order to be gone, got %v", err)
	}

	// center can open a fresh folder afterwards
	if _, err := workflow.CreateDra(ctx, &models.NewDra{
		CenterId:     center.ID,
		CreationDate: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("CreateDra after delete: %v", err)
	}
}

/* fixture helpers */

func createTestCenter(t *testing.T, ctx context.Context, funds string) *models.Center {
	t.Helper()
	center, err := models.CreateCenter(ctx, &models.NewCenter{
		Name:           fmt.Sprintf("Center %d", time.Now().UnixNano()),
		Address:        "Zone industrielle",
		Type:           models.CenterTypeA,
		Threshold:      decimal.NewFromInt(1000),
		AvailableFunds: decimal.RequireFromString(funds),
	})
	if err != nil {
		t.Fatalf("CreateCenter: %v", err)
	}
	return center
}

func createTestCatalogItem(t *testing.T, ctx context.Context, name string, kind models.CatalogKind, taxRate string) *models.CatalogItem {
	t.Helper()
	item, err := models.CreateCatalogItem(ctx, &models.NewCatalogItem{
		Name:      fmt.Sprintf("%s %d", name, time.Now().UnixNano()),
		Kind:      kind,
		UnitPrice: decimal.NewFromInt(100),
		TaxRate:   decimal.RequireFromString(taxRate),
	})
	if err != nil {
		t.Fatalf("CreateCatalogItem: %v", err)
	}
	return item
}

func createTestSupplier(t *testing.T, ctx context.Context) *models.Supplier {
	t.Helper()
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{
		Name:    fmt.Sprintf("Supplier %d", time.Now().UnixNano()),
		Address: "Rue des ateliers",
	})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	return supplier
}

func assertCenterFunds(t *testing.T, ctx context.Context, centerId int, want string) {
	t.Helper()
	center, err := models.GetCenter(ctx, centerId)
	if err != nil {
		t.Fatalf("GetCenter: %v", err)
	}
	if center.AvailableFunds.Cmp(decimal.RequireFromString(want)) != 0 {
		t.Fatalf("center %d: expected funds %s, got %s", centerId, want, center.AvailableFunds)
	}
}

func assertRunningTotal(t *testing.T, ctx context.Context, draNum string, want string) {
	t.Helper()
	dra, err := models.GetDra(ctx, draNum)
	if err != nil {
		t.Fatalf("GetDra: %v", err)
	}
	if dra.RunningTotal.Cmp(decimal.RequireFromString(want)) != 0 {
		t.Fatalf("folder %s: expected running total %s, got %s", draNum, want, dra.RunningTotal)
	}
}

func assertDraState(t *testing.T, ctx context.Context, draNum string, want models.DraState) {
	t.Helper()
	dra, err := models.GetDra(ctx, draNum)
	if err != nil {
		t.Fatalf("GetDra: %v", err)
	}
	if dra.State != want {
		t.Fatalf("folder %s: expected state %s, got %s", draNum, want, dra.State)
	}
}

/* docker-backed environment */

var integrationReady bool

func setupIntegrationEnv(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	if !integrationReady {
		redisName, redisPort := startRedisContainer(t)
		mysqlName, mysqlPort := startMySQLContainer(t)
		registerContainerCleanup(redisName, mysqlName)

		os.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
		os.Setenv("DB_USER", "root")
		os.Setenv("DB_PASSWORD", "testpw")
		os.Setenv("DB_HOST", "127.0.0.1")
		os.Setenv("DB_PORT", mysqlPort)
		os.Setenv("DB_NAME", "dra_test")

		config.ConnectDatabaseWithRetry()
		config.ConnectRedisWithRetry()
		models.MigrateTable()
		integrationReady = true
	}

	ctx := utils.SetCorrelationIdInContext(context.Background(), fmt.Sprintf("test-%d", time.Now().UnixNano()))
	return ctx
}

var cleanupContainers []string

func registerContainerCleanup(names ...string) {
	cleanupContainers = append(cleanupContainers, names...)
}

func TestMain(m *testing.M) {
	code := m.Run()
	for _, name := range cleanupContainers {
		_ = dockerRmForce(name)
	}
	os.Exit(code)
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("dra-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("dra-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=dra_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
