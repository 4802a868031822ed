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
	"github.com/sharmakshay27/KisaanPower/backend/services/market-service/models"
)

const (
	channelName   = "trading-channel"
	chaincodeName = "trading-core"
)

type Service struct {
	fabric *fabricclient.Client
	db     *sql.DB
}

func (s *Service) CreateListingHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", "")
		return
	}
	if req.CommodityID == "" || req.ReservePrice <= 0 {
		api.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "commodity_id and a positive reserve_price are required", "")
		return
	}

	// 1. Generate Listing ID
	listingID := "listing-" + uuid.NewString()

	// 2. Open the listing on-chain
	_, err := s.fabric.SubmitTransaction("CreateListing",
		listingID, req.CommodityID, strconv.FormatFloat(req.ReservePrice, 'f', -1, 64))
	if err != nil {
		log.Printf("Failed to create listing on chain: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "CHAIN_ERROR", "Failed to create listing", "")
		return
	}

	// 3. Save metadata to local DB
	_, err = s.db.Exec(`
		INSERT INTO market_db.listings (
			id, commodity_id, seller_id, description, state, reserve_price
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		listingID, req.CommodityID, req.SellerID, req.Description, "FOR_SALE", req.ReservePrice)
	if err != nil {
		log.Printf("Failed to save listing to DB: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to save listing metadata", "")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]string{"listing_id": listingID, "status": "created"})
}

func (s *Service) MakeOfferHandler(w http.ResponseWriter, r *http.Request) {
	listingID := mux.Vars(r)["id"]

	var req models.MakeOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", "")
		return
	}

	// Submit the bid on-chain; a listing no longer FOR_SALE rejects it there
	_, err := s.fabric.SubmitTransaction("MakeOffer",
		listingID, req.MemberID, strconv.FormatFloat(req.BidPrice, 'f', -1, 64))
	if err != nil {
		log.Printf("Failed to make offer: %v", err)
		api.WriteError(w, http.StatusConflict, "OFFER_REJECTED", "Offer was rejected by the network", "")
		return
	}

	_, err = s.db.Exec(`
		INSERT INTO market_db.offers (id, listing_id, member_id, bid_price)
		VALUES ($1, $2, $3, $4)`,
		"offer-"+uuid.NewString(), listingID, req.MemberID, req.BidPrice)
	if err != nil {
		log.Printf("Failed to index offer: %v", err)
	}

	api.WriteJSON(w, http.StatusOK, map[string]string{"listing_id": listingID, "status": "offer_recorded"})
}

func (s *Service) CloseBiddingHandler(w http.ResponseWriter, r *http.Request) {
	listingID := mux.Vars(r)["id"]

	_, err := s.fabric.SubmitTransaction("CloseBidding", listingID)
	if err != nil {
		log.Printf("Failed to close bidding: %v", err)
		api.WriteError(w, http.StatusConflict, "CLOSE_REJECTED", "Close bidding was rejected by the network", "")
		return
	}

	// Read back the settled state so the index follows the chain
	state := ""
	result, err := s.fabric.EvaluateTransaction("GetListing", listingID)
	if err == nil {
		var chainListing struct {
			State string `json:"state"`
		}
		if err := json.Unmarshal(result, &chainListing); err == nil {
			state = chainListing.State
		}
	}

	if state != "" {
		if _, err := s.db.Exec(`
			UPDATE market_db.listings SET state = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			state, listingID); err != nil {
			log.Printf("Failed to update listing index: %v", err)
		}
	}

	api.WriteJSON(w, http.StatusOK, models.CloseBiddingResult{ListingID: listingID, State: state})
}

func (s *Service) GetListingHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var listing models.Listing
	err := s.db.QueryRow(`
		SELECT l.id, l.commodity_id, l.seller_id, l.description, l.state, l.reserve_price,
			(SELECT COUNT(*) FROM market_db.offers o WHERE o.listing_id = l.id), l.created_at, l.updated_at
		FROM market_db.listings l WHERE l.id = $1`, id).
		Scan(&listing.ID, &listing.CommodityID, &listing.SellerID, &listing.Description,
			&listing.State, &listing.ReservePrice, &listing.OfferCount, &listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Listing not found", "")
		} else {
			log.Printf("DB Error: %v", err)
			api.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Internal Server Error", "")
		}
		return
	}

	// The chain is the source of truth for the sale state
	result, err := s.fabric.EvaluateTransaction("GetListing", id)
	if err == nil {
		var chainListing struct {
			State string `json:"state"`
		}
		if err := json.Unmarshal(result, &chainListing); err == nil && chainListing.State != "" {
			listing.State = chainListing.State
		}
	}

	api.WriteJSON(w, http.StatusOK, listing)
}

func (s *Service) ListListingsHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT id, commodity_id, seller_id, description, state, reserve_price, created_at, updated_at
		FROM market_db.listings ORDER BY created_at DESC LIMIT 50`)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to fetch listings", "")
		return
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var listing models.Listing
		if err := rows.Scan(&listing.ID, &listing.CommodityID, &listing.SellerID, &listing.Description,
			&listing.State, &listing.ReservePrice, &listing.CreatedAt, &listing.UpdatedAt); err == nil {
			listings = append(listings, listing)
		}
	}

	api.WriteJSON(w, http.StatusOK, listings)
}

func main() {
	cfg := common.LoadConfig()

	database, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer database.Close()

	if err := migrations.RunMigrations(database, "backend/migrations/market"); err != nil {
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

	auth := common.AuthMiddleware(cfg.JWTSecret)

	r := mux.NewRouter()
	r.HandleFunc("/listings", svc.CreateListingHandler).Methods("POST")
	r.HandleFunc("/listings", svc.ListListingsHandler).Methods("GET")
	r.HandleFunc("/listings/{id}", svc.GetListingHandler).Methods("GET")
	r.HandleFunc("/listings/{id}/offers", svc.MakeOfferHandler).Methods("POST")
	// closing an auction settles balances, so it is restricted to operators
	r.Handle("/listings/{id}/close", auth(common.RequireRole("operator", svc.CloseBiddingHandler))).Methods("POST")

	log.Printf("Market Service running on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
