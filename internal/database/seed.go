package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"inventory/internal/models"
	"inventory/internal/repositories"
)

type seedProduct struct {
	name, category string
	price          float64
	stock          int
	description    string
	imageURL       string
	sku            string
}

var demoCatalogue = []seedProduct{
	{"Aurora XR Pro Headset", "Electronics", 299.99, 45, "Immersive virtual reality experience with 4K displays and advanced tracking", "🎮", "SKU_0001"},
	{"PulseBand Vibe Smartwatch", "Electronics", 199.99, 32, "Track your fitness with heart rate monitoring and GPS tracking", "⌚", "SKU_0002"},
	{"Nexus Ultra Laptop", "Computers", 1299.99, 18, "Powerful 16-inch laptop with latest processor and stunning display", "💻", "SKU_0003"},
	{"ThunderBolt Wireless Mouse", "Accessories", 49.99, 67, "Ergonomic design with precision tracking and long battery life", "🖱️", "SKU_0004"},
	{"Crystal Clear Monitor 27\"", "Displays", 349.99, 24, "4K UHD display with HDR support and ultra-slim bezels", "🖥️", "SKU_0005"},
	{"Mechanical Pro Keyboard", "Accessories", 129.99, 41, "RGB backlit mechanical keyboard with Cherry MX switches", "⌨️", "SKU_0006"},
	{"PowerHub USB-C Charger", "Accessories", 29.99, 89, "Fast charging 65W USB-C adapter with multiple ports", "🔌", "SKU_0007"},
	{"CloudSync External SSD 1TB", "Storage", 149.99, 56, "Lightning-fast external SSD with USB 3.2 Gen 2", "💾", "SKU_0008"},
	{"SoundWave Premium Headphones", "Audio", 179.99, 38, "Active noise cancellation with 30-hour battery life", "🎧", "SKU_0009"},
	{"FlexStand Ergonomic Stand", "Accessories", 79.99, 72, "Adjustable laptop stand for better posture and airflow", "📐", "SKU_0010"},
	{"StreamCam 4K Webcam", "Video", 129.99, 28, "Professional 4K webcam with auto-focus and noise reduction", "📹", "SKU_0011"},
	{"Lightning Cable Pro 2m", "Cables", 24.99, 95, "Durable braided cable with fast charging support", "🔗", "SKU_0012"},
	{"ZenPad Drawing Tablet", "Creative", 249.99, 15, "Pressure-sensitive drawing tablet for digital artists", "✏️", "SKU_0013"},
	{"GamePad Pro Controller", "Gaming", 69.99, 52, "Wireless controller with haptic feedback and long battery", "🎯", "SKU_0014"},
	{"SmartDesk Adjustable", "Furniture", 599.99, 8, "Electric height-adjustable desk with memory presets", "🪑", "SKU_0015"},
	{"BlueTooth Speaker Max", "Audio", 89.99, 44, "360-degree sound with waterproof design and 20h battery", "🔊", "SKU_0016"},
	{"DataGuard Backup Drive 2TB", "Storage", 89.99, 61, "Automatic backup solution with encryption", "💿", "SKU_0017"},
	{"AirFlow Laptop Cooler", "Accessories", 39.99, 77, "Quiet cooling pad with RGB lighting and USB hub", "🌀", "SKU_0018"},
	{"PixelPerfect Photo Printer", "Printing", 199.99, 19, "Wireless photo printer with borderless printing", "🖨️", "SKU_0019"},
	{"SecureLock USB Drive 512GB", "Storage", 59.99, 83, "Hardware-encrypted USB drive with fingerprint sensor", "🔒", "SKU_0020"},
}

// DemoProducts returns a fresh copy of the demo catalogue.
func DemoProducts() []models.Product {
	products := make([]models.Product, 0, len(demoCatalogue))
	for _, s := range demoCatalogue {
		products = append(products, models.Product{
			Name:        s.name,
			Category:    s.category,
			Price:       models.DecimalPtr(s.price),
			StockLevel:  models.IntPtr(s.stock),
			Description: s.description,
			ImageURL:    s.imageURL,
			SkuID:       models.StringPtr(s.sku),
		})
	}
	return products
}

// SeedDemoProducts inserts the demo catalogue when the product table is empty.
// It returns the number of products inserted.
func SeedDemoProducts(ctx context.Context, repo repositories.ProductRepository, logger *zap.Logger) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		logger.Info("Products already exist, skipping seed", zap.Int64("count", count))
		return 0, nil
	}

	products := DemoProducts()
	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			return i, fmt.Errorf("seed product %s: %w", products[i].Name, err)
		}
	}
	logger.Info("Seeded demo products", zap.Int("count", len(products)))
	return len(products), nil
}
