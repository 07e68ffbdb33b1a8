package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"vmagma/db"
	"vmagma/models"
	"vmagma/utils"
)

// DefaultFotoPerfil is assigned to every newly registered user.
const DefaultFotoPerfil = "assets/img/default-avatar.png"

// CognitoClient is the subset of the Cognito API the auth service uses.
type CognitoClient interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
}

// AuthService registers and authenticates users against the identity provider
// and keeps the session manager in sync.
type AuthService struct {
	client          CognitoClient
	appClientID     string
	appClientSecret string
	store           db.Store
	sessions        *SessionManager
}

func NewAuthService(client CognitoClient, appClientID, appClientSecret string, store db.Store, sessions *SessionManager) *AuthService {
	return &AuthService{
		client:          client,
		appClientID:     appClientID,
		appClientSecret: appClientSecret,
		store:           store,
		sessions:        sessions,
	}
}

// Registrar creates the credential, then the matching user document with zero
// points and a default photo. Provider failures come back already translated.
func (a *AuthService) Registrar(ctx context.Context, email, password, nombre, apellidos, username string) (*models.Usuario, error) {
	secretHash := utils.GenerateSecretHash(email, a.appClientID, a.appClientSecret)

	out, err := a.client.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId:   aws.String(a.appClientID),
		Password:   aws.String(password),
		SecretHash: aws.String(secretHash),
		Username:   aws.String(email),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(nombre)},
		},
	})
	if err != nil {
		log.Printf("Error al registrar: %v", err)
		return nil, errors.New(TraducirErrorAuth(err))
	}

	if username == "" {
		username = utils.ExtractNameFromEmail(email)
	}

	nuevo := &models.Usuario{
		ID:                aws.ToString(out.UserSub),
		Nombre:            nombre,
		Apellidos:         apellidos,
		Username:          username,
		Foto:              DefaultFotoPerfil,
		Puntos:            0,
		LogrosCompletados: 0,
		Logros:            []db.DocRef{},
		LogrosExpandidos:  []models.Logro{},
	}

	if err := a.crearDocumentoUsuario(ctx, nuevo); err != nil {
		log.Printf("Error al crear documento de usuario: %v", err)
		return nil, err
	}

	a.sessions.Set(nuevo)
	return nuevo, nil
}

func (a *AuthService) crearDocumentoUsuario(ctx context.Context, usuario *models.Usuario) error {
	return a.store.SetDoc(ctx, a.store.Doc(colUsuario, usuario.ID), usuario)
}

// Autenticar verifies the credential and loads the user document. The access
// token is returned for subsequent authenticated calls.
func (a *AuthService) Autenticar(ctx context.Context, email, password string) (*models.Usuario, string, error) {
	secretHash := utils.GenerateSecretHash(email, a.appClientID, a.appClientSecret)

	authOut, err := a.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(a.appClientID),
		AuthParameters: map[string]string{
			"USERNAME":    email,
			"PASSWORD":    password,
			"SECRET_HASH": secretHash,
		},
	})
	if err != nil {
		log.Printf("Error al iniciar sesión: %v", err)
		return nil, "", errors.New(TraducirErrorAuth(err))
	}
	if authOut.AuthenticationResult == nil {
		return nil, "", errors.New(TraducirErrorAuth(errors.New("challenge pendiente")))
	}
	token := aws.ToString(authOut.AuthenticationResult.AccessToken)

	uid, _, err := a.ValidarToken(ctx, token)
	if err != nil {
		return nil, "", errors.New(TraducirErrorAuth(err))
	}

	snap, err := a.store.GetDoc(ctx, a.store.Doc(colUsuario, uid))
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user %s: %w", uid, err)
	}
	if !snap.Exists {
		return nil, "", errors.New(MensajeUsuarioNoEncontrado)
	}
	var usuario models.Usuario
	if err := snap.Decode(&usuario); err != nil {
		return nil, "", fmt.Errorf("failed to decode user %s: %w", uid, err)
	}
	if usuario.ID == "" {
		usuario.ID = uid
	}

	a.sessions.Set(&usuario)
	return &usuario, token, nil
}

// CerrarSesion revokes the credential and clears the session slot.
func (a *AuthService) CerrarSesion(ctx context.Context, accessToken string) error {
	if _, err := a.client.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	}); err != nil {
		log.Printf("Error al cerrar sesión: %v", err)
		return errors.New(TraducirErrorAuth(err))
	}
	a.sessions.Set(nil)
	return nil
}

// ValidarToken resolves an access token into the provider uid and email.
func (a *AuthService) ValidarToken(ctx context.Context, accessToken string) (uid, email string, err error) {
	out, err := a.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return "", "", fmt.Errorf("token validation failed: %w", err)
	}
	for _, attr := range out.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "sub":
			uid = aws.ToString(attr.Value)
		case "email":
			email = aws.ToString(attr.Value)
		}
	}
	if uid == "" {
		uid = aws.ToString(out.Username)
	}
	return uid, email, nil
}

// TraducirErrorAuth maps provider errors onto a closed set of user-facing
// messages. Anything outside the table falls back to a generic message.
func TraducirErrorAuth(err error) string {
	var (
		invalidParam    *types.InvalidParameterException
		userNotFound    *types.UserNotFoundException
		notAuthorized   *types.NotAuthorizedException
		usernameExists  *types.UsernameExistsException
		invalidPassword *types.InvalidPasswordException
		tooMany         *types.TooManyRequestsException
		notConfirmed    *types.UserNotConfirmedException
		netErr          net.Error
	)
	switch {
	case errors.As(err, &invalidParam):
		return "El email no es válido"
	case errors.As(err, &userNotFound):
		return "No existe un usuario con este email"
	case errors.As(err, &notAuthorized):
		return "Contraseña incorrecta"
	case errors.As(err, &usernameExists):
		return "Este email ya está registrado"
	case errors.As(err, &invalidPassword):
		return "La contraseña debe tener al menos 6 caracteres"
	case errors.As(err, &tooMany):
		return "Demasiados intentos. Intenta más tarde"
	case errors.As(err, &notConfirmed):
		return "El usuario ha sido deshabilitado"
	case errors.As(err, &netErr):
		return "Error de conexión. Verifica tu internet"
	}
	return "Error desconocido al autenticar"
}
