package util

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Initialize env vars
func LoadEnvFor(v string) (x string) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	x = os.Getenv(v)

	return
}

var (
	dbOnce   sync.Once
	dbClient *mongo.Client

	redisOnce   sync.Once
	redisClient *redis.Client
)

// ConnectDB dials MongoDB and verifies the connection.
func ConnectDB() (client *mongo.Client) {
	log.Println("starting MongoDB connection..")
	client, err := mongo.NewClient(options.Client().ApplyURI(LoadEnvFor("DATABASE_URL")))
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = client.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}

	// try to ping the database
	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("MongoDB connection successful")
	return
}

// DB returns the shared Mongo client, connecting on first use so importing
// this package never requires a live database.
func DB() *mongo.Client {
	dbOnce.Do(func() {
		dbClient = ConnectDB()
	})
	return dbClient
}

// GetCollection resolves a collection on the application database.
func GetCollection(name string) (collection *mongo.Collection) {
	collection = DB().Database("fonegitim").Collection(name)
	return
}

// ConnectRedis dials Redis from the configured URL.
func ConnectRedis() *redis.Client {
	redisUrl := LoadEnvFor("REDIS_URL")
	log.Printf("starting redis connection..%v", redisUrl)
	addr, err := redis.ParseURL(redisUrl)
	if err != nil {
		log.Fatal(err)
	}

	client := redis.NewClient(addr)

	log.Println("redis connection successful..")
	return client
}

// Redis returns the shared Redis client, connecting on first use.
func Redis() *redis.Client {
	redisOnce.Do(func() {
		redisClient = ConnectRedis()
	})
	return redisClient
}
