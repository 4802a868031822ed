package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sharmakshay27/KisaanPower/backend/pkg/common"
	"github.com/sharmakshay27/KisaanPower/backend/pkg/common/api"
	"github.com/sharmakshay27/KisaanPower/backend/pkg/common/db"
	"github.com/sharmakshay27/KisaanPower/backend/pkg/common/migrations"
	"github.com/sharmakshay27/KisaanPower/backend/pkg/fabricclient"
	"github.com/sharmakshay27/KisaanPower/backend/services/trace-service/models"
)

const (
	channelName   = "trading-channel"
	chaincodeName = "trading-core"
)

// URL hop segment -> chaincode transaction
var hopTransactions = map[string]string{
	"local-mandi":       "SellToLocalMandi",
	"destination-mandi": "SellToDestinationMandi",
	"wholesaler":        "SellToWholesaler",
}

type Service struct {
	fabric *fabricclient.Client
	db     *sql.DB
}

func (s *Service) TransferHandler(w http.ResponseWriter, r *http.Request) {
	hop := mux.Vars(r)["hop"]
	txName, ok := hopTransactions[hop]
	if !ok {
		api.WriteError(w, http.StatusNotFound, "UNKNOWN_HOP", "Unknown relay hop", "")
		return
	}

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", "")
		return
	}

	// 1. Record "Pending" in DB
	transferID := "transfer-" + uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO trace_db.transfers (
			id, hop, source_id, destination_id, commodity_id, quantity, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		transferID, hop, req.SourceID, req.DestinationID, req.CommodityID, req.Quantity, "Pending")
	if err != nil {
		log.Printf("Failed to record pending transfer: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Internal Server Error", "")
		return
	}

	// 2. Call Chaincode. A capacity shortfall does NOT error here: the hop
	// commits either way and the outcome lands on the commodity record.
	_, err = s.fabric.SubmitTransaction(txName,
		req.SourceID, req.DestinationID, req.CommodityID, strconv.FormatInt(req.Quantity, 10))
	if err != nil {
		log.Printf("Failed to submit %s: %v", txName, err)
		s.db.Exec("UPDATE trace_db.transfers SET status = 'Failed', updated_at = CURRENT_TIMESTAMP WHERE id = $1", transferID)
		api.WriteError(w, http.StatusInternalServerError, "CHAIN_ERROR", "Transfer transaction failed", "")
		return
	}

	// 3. Read the recorded outcome back from the commodity
	var commodity models.Commodity
	result, err := s.fabric.EvaluateTransaction("GetCommodity", req.CommodityID)
	if err != nil {
		log.Printf("Failed to read commodity after transfer: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "CHAIN_ERROR", "Failed to read transfer outcome", "")
		return
	}
	if err := json.Unmarshal(result, &commodity); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "CHAIN_ERROR", "Failed to parse commodity data", "")
		return
	}

	_, err = s.db.Exec(`
		UPDATE trace_db.transfers
		SET status = $1, came_from = $2, sending_to = $3, price_of_com = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5`,
		commodity.TransferStatus, commodity.CameFrom, commodity.SendingTo, commodity.PriceOfCom, transferID)
	if err != nil {
		log.Printf("Failed to update transfer index: %v", err)
	}

	api.WriteJSON(w, http.StatusOK, commodity)
}

func (s *Service) GetTraceHandler(w http.ResponseWriter, r *http.Request) {
	commodityID := mux.Vars(r)["id"]

	rows, err := s.db.Query(`
		SELECT id, hop, source_id, destination_id, commodity_id, quantity, status,
			COALESCE(came_from, ''), COALESCE(sending_to, ''), COALESCE(price_of_com, 0),
			created_at, updated_at
		FROM trace_db.transfers WHERE commodity_id = $1 ORDER BY created_at`, commodityID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to fetch trace", "")
		return
	}
	defer rows.Close()

	var trace []models.Transfer
	for rows.Next() {
		var t models.Transfer
		if err := rows.Scan(&t.ID, &t.Hop, &t.SourceID, &t.DestinationID, &t.CommodityID, &t.Quantity,
			&t.Status, &t.CameFrom, &t.SendingTo, &t.PriceOfCom, &t.CreatedAt, &t.UpdatedAt); err == nil {
			trace = append(trace, t)
		}
	}

	api.WriteJSON(w, http.StatusOK, trace)
}

func (s *Service) ListTransfersHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT id, hop, source_id, destination_id, commodity_id, quantity, status,
			COALESCE(came_from, ''), COALESCE(sending_to, ''), COALESCE(price_of_com, 0),
			created_at, updated_at
		FROM trace_db.transfers ORDER BY created_at DESC LIMIT 50`)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to fetch transfers", "")
		return
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		var t models.Transfer
		if err := rows.Scan(&t.ID, &t.Hop, &t.SourceID, &t.DestinationID, &t.CommodityID, &t.Quantity,
			&t.Status, &t.CameFrom, &t.SendingTo, &t.PriceOfCom, &t.CreatedAt, &t.UpdatedAt); err == nil {
			transfers = append(transfers, t)
		}
	}

	api.WriteJSON(w, http.StatusOK, transfers)
}

// listenNotifications indexes TransferNotification events so the trace
// survives transfers submitted outside this service.
func (s *Service) listenNotifications() {
	notifier, err := s.fabric.RegisterChaincodeEventListener("TransferNotification")
	if err != nil {
		log.Printf("Warning: failed to register event listener: %v", err)
		return
	}

	for event := range notifier {
		var notification struct {
			Namespace string           `json:"namespace"`
			Name      string           `json:"name"`
			Payload   models.Commodity `json:"payload"`
		}
		if err := json.Unmarshal(event.Payload, &notification); err != nil {
			log.Printf("Failed to parse TransferNotification: %v", err)
			continue
		}

		_, err := s.db.Exec(`
			INSERT INTO trace_db.notifications (tx_id, event_name, commodity_id, transfer_status, payload)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (tx_id) DO NOTHING`,
			event.TxID, notification.Name, notification.Payload.ID,
			notification.Payload.TransferStatus, event.Payload)
		if err != nil {
			log.Printf("Failed to index notification: %v", err)
		}
	}
}

func main() {
	cfg := common.LoadConfig()

	database, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer database.Close()

	if err := migrations.RunMigrations(database, "backend/migrations/trace"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fabric, err := fabricclient.NewClient(
		cfg.FabricConfig,
		channelName,
		chaincodeName,
		cfg.MSP,
		cfg.CertPath,
		cfg.KeyPath,
	)
	if err != nil {
		log.Printf("Warning: Fabric connection failed: %v", err)
	} else {
		defer fabric.Close()
	}

	svc := &Service{fabric: fabric, db: database}

	if fabric != nil {
		go svc.listenNotifications()
	}

	r := mux.NewRouter()
	r.HandleFunc("/transfers/{hop}", svc.TransferHandler).Methods("POST")
	r.HandleFunc("/transfers", svc.ListTransfersHandler).Methods("GET")
	r.HandleFunc("/commodities/{id}/trace", svc.GetTraceHandler).Methods("GET")

	log.Printf("Trace Service running on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
